package model

import "time"

// Station represents a weather station row in the `stations` table.  Besides
// its identity and credentials the row carries a denormalized "current
// snapshot": the sensor columns are overwritten on every ingest and always
// mirror the most recent Data record for the station.
//
// Fields:
//  ID            – primary key identifier of the station.
//  APIAccessKey  – opaque secret generated once at creation, immutable.
//                  Stations authenticate ingest calls with it.
//  StationName   – human-assigned name; the unique code is scoped to it.
//  UniqueCode    – 4-digit memorable code, unique within a station name.
//  Location      – human-assigned location string; also overwritten on ingest.
//  Owner         – username of the owning user (FK users.username, cascade).
//  IsPublic      – visibility flag; public stations are readable by anyone.
//  CreatedAt     – timestamp of registration.
//  LastUpdated   – when the snapshot was last overwritten (nil before the
//                  first ingest).
//  Temperature … IsRaining – the current snapshot sensor values.
type Station struct {
	ID           uint64     // stations.station_id
	APIAccessKey string     // stations.api_access_key
	StationName  string     // stations.station_name
	UniqueCode   string     // stations.unique_code
	Location     string     // stations.location
	Owner        string     // stations.owner (references users.username)
	IsPublic     bool       // stations.is_public
	CreatedAt    time.Time  // stations.created_at
	LastUpdated  *time.Time // stations.last_updated (nullable)

	Temperature   float64 // stations.temperature
	Pressure      float64 // stations.pressure
	Humidity      float64 // stations.humidity
	WindSpeed     float64 // stations.wind_speed
	WindDirection string  // stations.wind_direction
	UVIndex       float64 // stations.uv_index
	IsRaining     bool    // stations.is_raining
}
