// Package queue defines message payloads exchanged over the message broker.
package queue

// ReadingIngestedEvent is published after a station's reading has been
// committed.  It carries the full reading so downstream consumers can log,
// alert or archive without querying the primary database.
type ReadingIngestedEvent struct {
    StationID     uint64  `json:"station_id"`
    StationName   string  `json:"station_name"`
    Location      string  `json:"location"`
    Temperature   float64 `json:"temperature"`
    Pressure      float64 `json:"pressure"`
    Humidity      float64 `json:"humidity"`
    WindSpeed     float64 `json:"wind_speed"`
    WindDirection string  `json:"wind_direction"`
    UVIndex       float64 `json:"uv_index"`
    IsRaining     bool    `json:"is_raining"`
    CreatedAt     string  `json:"created_at"`
}
