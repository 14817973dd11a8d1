package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/Musah95/wapi-2/internal/config"
	"github.com/Musah95/wapi-2/internal/handler"    // import the handlers that implement business logic
	"github.com/Musah95/wapi-2/internal/middleware" // import middleware for authentication and caching
	"github.com/Musah95/wapi-2/internal/repository"
)

// RegisterRoutes registers the routes that need no handler state: the health
// check used by load balancers and the simulated-weather demo endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/weather", handler.Weather)
}

// RegisterUsers registers signup, login and profile endpoints.  Signup and
// login are open; the listing and profile endpoints require a valid bearer
// token (the listing is further restricted to admins inside the handler).
func RegisterUsers(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, jwtSecret string) {
	e.POST("/login", a.Login)
	e.POST("/users/", u.Register)

	authed := middleware.JWTAuth(jwtSecret)
	e.GET("/users/", u.List, authed)
	e.GET("/users/me", u.Me, authed)
}

// RegisterStations registers the station lifecycle and telemetry endpoints.
// Four different authentication modes coexist here:
//   - mutations require a user bearer token;
//   - the detail and historical reads allow anonymous callers, with the
//     visibility rule applied in the handler;
//   - the public listing and latest-metrics routes take no credentials at
//     all and sit behind the Redis response cache;
//   - data ingest authenticates the reporting station by its API key.
func RegisterStations(e *echo.Echo, s *handler.StationHandler, t *handler.TelemetryHandler,
	stations *repository.StationRepo, jwtSecret string, cacheCfg config.CacheConfig, rdb *redis.Client) {

	authed := middleware.JWTAuth(jwtSecret)
	optional := middleware.OptionalJWTAuth(jwtSecret)
	stationKey := middleware.StationKeyAuth(stations)
	cached := middleware.NewRedisCache(cacheCfg, rdb)

	e.POST("/stations/", s.Create, authed)
	e.PUT("/stations/:id/location", s.Update, authed)
	e.DELETE("/stations/:id", s.Delete, authed)
	e.GET("/stations/all", s.ListAll, authed)

	e.GET("/stations/:id/details", s.Details, optional)
	e.GET("/stations/:id/historical_data", t.HistoricalData, optional)

	e.GET("/stations/public", s.ListPublic, cached)
	e.GET("/stations/:id/latest_metrics", t.LatestMetrics, cached)

	e.POST("/stations/data", t.CreateData, stationKey)
}
