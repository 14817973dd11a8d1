package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Musah95/wapi-2/internal/repository"
)

// HistoricalData handles GET /stations/:id/historical_data.  The time window
// comes from the start_time/end_time query parameters; with neither present
// the window defaults to the 24 hours preceding the station's most recent
// reading.  Bounds are inclusive and results are returned oldest first.
func (h *TelemetryHandler) HistoricalData(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	// Existence first: an absent station is a 404 before any visibility
	// attribute is touched.
	st, err := h.Stations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	p := resolvePrincipal(ctx, c, h.Users)
	if !p.CanViewStation(st) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not authorized to access this station's data"})
	}

	start, end, err := resolveWindow(ctx, h.Data, id, c.QueryParam("start_time"), c.QueryParam("end_time"))
	if err != nil {
		if errors.Is(err, repository.ErrNoData) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no data found for this station"})
		}
		if errors.Is(err, errBadTimeBound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time format"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	points, err := h.Data.ListRange(ctx, id, start, end)
	if err != nil {
		if errors.Is(err, repository.ErrNoData) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no historical data found for the given filters"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	out := make([]dataOut, 0, len(points))
	for _, d := range points {
		out = append(out, toDataOut(d))
	}
	return c.JSON(http.StatusOK, out)
}

var errBadTimeBound = errors.New("invalid time bound")

// resolveWindow turns the raw query parameters into concrete bounds.  With
// neither bound supplied, the window is anchored at the newest reading and
// reaches back 24 hours; a station with no readings has nothing to anchor
// to and surfaces ErrNoData.  A single supplied bound leaves the other side
// unbounded (nil).
func resolveWindow(ctx context.Context, data *repository.DataRepo, stationID uint64, rawStart, rawEnd string) (*time.Time, *time.Time, error) {
	if rawStart == "" && rawEnd == "" {
		latest, err := data.LatestTimestamp(ctx, stationID)
		if err != nil {
			return nil, nil, err
		}
		start := latest.Add(-24 * time.Hour)
		return &start, &latest, nil
	}

	var start, end *time.Time
	if rawStart != "" {
		t, err := parseTimeBound(rawStart)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if rawEnd != "" {
		t, err := parseTimeBound(rawEnd)
		if err != nil {
			return nil, nil, err
		}
		end = &t
	}
	return start, end, nil
}

// parseTimeBound accepts RFC 3339 timestamps as well as the naive ISO form
// without a zone offset (taken as UTC).
func parseTimeBound(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errBadTimeBound
}
