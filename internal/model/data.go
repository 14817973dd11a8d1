package model

import "time"

// Data is one immutable historical reading in the `data` table.  Rows are
// written exactly once per ingest call and never updated; they are only
// removed when the owning station is deleted (cascade).
//
// Fields:
//  ID        – primary key identifier, monotonic per insertion order.
//  StationID – owning station (FK stations.station_id, cascade delete).
//  Location  – the station's location at the time of the reading.
//  CreatedAt – server-assigned UTC timestamp of the ingest.
type Data struct {
	ID        uint64  // data.data_id
	StationID uint64  // data.station_id
	Location  string  // data.location

	Temperature   float64 // data.temperature
	Pressure      float64 // data.pressure
	Humidity      float64 // data.humidity
	WindSpeed     float64 // data.wind_speed
	WindDirection string  // data.wind_direction
	UVIndex       float64 // data.uv_index
	IsRaining     bool    // data.is_raining

	CreatedAt time.Time // data.created_at
}
