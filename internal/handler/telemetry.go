package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Musah95/wapi-2/internal/model"
	"github.com/Musah95/wapi-2/internal/queue"
	"github.com/Musah95/wapi-2/internal/repository"
	queue_publisher "github.com/Musah95/wapi-2/internal/service"
)

// TelemetryHandler bundles repositories for the data ingest and read
// endpoints.
type TelemetryHandler struct {
	Users    *repository.UserRepo
	Stations *repository.StationRepo
	Data     *repository.DataRepo
}

// NewTelemetryHandler constructs a TelemetryHandler and panics if a
// dependency is nil.
func NewTelemetryHandler(users *repository.UserRepo, stations *repository.StationRepo, data *repository.DataRepo) *TelemetryHandler {
	if users == nil || stations == nil || data == nil {
		panic("nil repository passed to NewTelemetryHandler")
	}
	return &TelemetryHandler{Users: users, Stations: stations, Data: data}
}

type dataCreateReq struct {
	Location      string  `json:"location"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection string  `json:"wind_direction"`
	Temperature   float64 `json:"temperature"`
	Pressure      float64 `json:"pressure"`
	Humidity      float64 `json:"humidity"`
	UVIndex       float64 `json:"uv_index"`
	IsRaining     bool    `json:"is_raining"`
}

// CreateData handles POST /stations/data.  The reporting station is the one
// the API key resolved to in middleware; nothing in the body can redirect
// the write to another station.  The snapshot overwrite and the history
// append happen in one transaction, so a reading is either fully recorded
// or not at all.
func (h *TelemetryHandler) CreateData(c echo.Context) error {
	st, ok := c.Get("station").(*model.Station)
	if !ok || st == nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid API key"})
	}

	var req dataCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Location) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d := &model.Data{
		Location:      req.Location,
		WindSpeed:     req.WindSpeed,
		WindDirection: req.WindDirection,
		Temperature:   req.Temperature,
		Pressure:      req.Pressure,
		Humidity:      req.Humidity,
		UVIndex:       req.UVIndex,
		IsRaining:     req.IsRaining,
	}
	if err := h.Data.RecordReading(ctx, st.ID, d); err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not record reading"})
	}

	// Downstream consumers (alerting, archival) learn about the reading via
	// the broker; a publish failure never fails the ingest.
	_ = queue_publisher.PublishReadingIngested(ctx, queue.ReadingIngestedEvent{
		StationID:     st.ID,
		StationName:   st.StationName,
		Location:      d.Location,
		Temperature:   d.Temperature,
		Pressure:      d.Pressure,
		Humidity:      d.Humidity,
		WindSpeed:     d.WindSpeed,
		WindDirection: d.WindDirection,
		UVIndex:       d.UVIndex,
		IsRaining:     d.IsRaining,
		CreatedAt:     d.CreatedAt.Format(time.RFC3339Nano),
	})

	return c.JSON(http.StatusCreated, toDataOut(*d))
}

// LatestMetrics handles GET /stations/:id/latest_metrics and returns the
// last two readings, newest first, for client-side trend computation.  No
// visibility rule applies here, unlike every other read endpoint; an
// unknown station simply yields an empty list.
func (h *TelemetryHandler) LatestMetrics(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	points, err := h.Data.Latest(ctx, id, 2)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]dataOut, 0, len(points))
	for _, d := range points {
		out = append(out, toDataOut(d))
	}
	return c.JSON(http.StatusOK, out)
}
