package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Musah95/wapi-2/internal/repository"
)

// StationKeyHeader carries the station API access key on ingest requests.
// The key travels as a header, never as a body field, so the credential and
// the payload stay separate and a station can never name another station in
// the body to ingest on its behalf.
const StationKeyHeader = "X-API-Key"

// StationKeyAuth returns a middleware that authenticates a weather station
// by its API access key.  The key is resolved by exact match against the
// stations table; the matched record is stored in the context under
// "station" so the ingest handler knows which station is reporting without
// trusting anything in the request body.  An unknown or missing key is
// rejected with 403, the same way for both cases, so the response does not
// reveal whether a given key exists.
func StationKeyAuth(stations *repository.StationRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := strings.TrimSpace(c.Request().Header.Get(StationKeyHeader))
			if key == "" {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid API key"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			st, err := stations.GetByAPIKey(ctx, key)
			if err != nil {
				if errors.Is(err, repository.ErrStationNotFound) {
					return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid API key"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "station lookup failed"})
			}
			c.Set("station", st)
			return next(c)
		}
	}
}
