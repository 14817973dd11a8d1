package handler // handler defines http handlers

import (
	"context" // context carries request deadlines into repository calls
	"errors"  // errors provides sentinel values used in getUserID
	"strconv" // strconv converts strings to numeric types
	"time"    // time formats response timestamps

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/Musah95/wapi-2/internal/auth"       // auth resolves principals and policy
	"github.com/Musah95/wapi-2/internal/model"      // model holds persistence structs
	"github.com/Musah95/wapi-2/internal/repository" // repository holds data access layer
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// The JWT middleware stores the raw subject claim, which the jwt library
// decodes as float64 for numeric tokens.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// resolvePrincipal builds the principal a request is evaluated under.  A
// valid token subject is resolved to a fresh user row; a missing subject or
// a token for a user that no longer exists yields the anonymous principal,
// so stale tokens degrade to public-only visibility instead of failing.
func resolvePrincipal(ctx context.Context, c echo.Context, users *repository.UserRepo) auth.Principal {
	uid, err := getUserID(c)
	if err != nil {
		return auth.Anonymous()
	}
	u, err := users.GetByID(ctx, uid)
	if err != nil {
		return auth.Anonymous()
	}
	return auth.ForUser(&u)
}

// ----- shared response DTOs -----

// dataOut is one historical reading as returned by the data endpoints.
type dataOut struct {
	WindSpeed     float64   `json:"wind_speed"`
	WindDirection string    `json:"wind_direction"`
	Temperature   float64   `json:"temperature"`
	Pressure      float64   `json:"pressure"`
	Humidity      float64   `json:"humidity"`
	UVIndex       float64   `json:"uv_index"`
	IsRaining     bool      `json:"is_raining"`
	CreatedAt     time.Time `json:"created_at"`
}

func toDataOut(d model.Data) dataOut {
	return dataOut{
		WindSpeed:     d.WindSpeed,
		WindDirection: d.WindDirection,
		Temperature:   d.Temperature,
		Pressure:      d.Pressure,
		Humidity:      d.Humidity,
		UVIndex:       d.UVIndex,
		IsRaining:     d.IsRaining,
		CreatedAt:     d.CreatedAt,
	}
}

// stationData is the owner/admin view of a station: full snapshot plus the
// API access key.  publicStationData is the same payload without the key;
// the key is a live ingest credential and only ever travels to callers who
// could also mutate the station.
type stationData struct {
	StationID    uint64     `json:"station_id"`
	StationName  string     `json:"station_name"`
	UniqueCode   string     `json:"unique_code"`
	Location     string     `json:"location"`
	Owner        string     `json:"owner"`
	APIAccessKey string     `json:"api_access_key"`
	IsPublic     bool       `json:"is_public"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUpdated  *time.Time `json:"last_updated"`

	Temperature   float64 `json:"temperature"`
	Pressure      float64 `json:"pressure"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection string  `json:"wind_direction"`
	UVIndex       float64 `json:"uv_index"`
	IsRaining     bool    `json:"is_raining"`
}

type publicStationData struct {
	StationID   uint64     `json:"station_id"`
	StationName string     `json:"station_name"`
	Location    string     `json:"location"`
	IsPublic    bool       `json:"is_public"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUpdated *time.Time `json:"last_updated"`

	Temperature   float64 `json:"temperature"`
	Pressure      float64 `json:"pressure"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection string  `json:"wind_direction"`
	UVIndex       float64 `json:"uv_index"`
	IsRaining     bool    `json:"is_raining"`
}

func toStationData(s *model.Station) stationData {
	return stationData{
		StationID:     s.ID,
		StationName:   s.StationName,
		UniqueCode:    s.UniqueCode,
		Location:      s.Location,
		Owner:         s.Owner,
		APIAccessKey:  s.APIAccessKey,
		IsPublic:      s.IsPublic,
		CreatedAt:     s.CreatedAt,
		LastUpdated:   s.LastUpdated,
		Temperature:   s.Temperature,
		Pressure:      s.Pressure,
		Humidity:      s.Humidity,
		WindSpeed:     s.WindSpeed,
		WindDirection: s.WindDirection,
		UVIndex:       s.UVIndex,
		IsRaining:     s.IsRaining,
	}
}

func toPublicStationData(s *model.Station) publicStationData {
	return publicStationData{
		StationID:     s.ID,
		StationName:   s.StationName,
		Location:      s.Location,
		IsPublic:      s.IsPublic,
		CreatedAt:     s.CreatedAt,
		LastUpdated:   s.LastUpdated,
		Temperature:   s.Temperature,
		Pressure:      s.Pressure,
		Humidity:      s.Humidity,
		WindSpeed:     s.WindSpeed,
		WindDirection: s.WindDirection,
		UVIndex:       s.UVIndex,
		IsRaining:     s.IsRaining,
	}
}
