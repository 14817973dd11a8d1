package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/Musah95/wapi-2/internal/config"     // Internal config loader
	"github.com/Musah95/wapi-2/internal/database"   // MySQL connection pool
	"github.com/Musah95/wapi-2/internal/handler"    // HTTP handlers
	"github.com/Musah95/wapi-2/internal/middleware" // rate limiting
	"github.com/Musah95/wapi-2/internal/queue"      // telemetry event consumer
	"github.com/Musah95/wapi-2/internal/repository" // data access layer
	"github.com/Musah95/wapi-2/internal/router"     // route registration
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env vars directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	users := repository.NewUserRepo(db)
	stations := repository.NewStationRepo(db)
	data := repository.NewDataRepo(db)

	authH := handler.NewAuthHandler(cfg, users)
	userH := handler.NewUserHandler(cfg, users)
	stationH := handler.NewStationHandler(cfg, users, stations)
	telemetryH := handler.NewTelemetryHandler(users, stations, data)

	// Redis backs rate limiting and the public-endpoint response cache.  A
	// nil client disables both and the API keeps serving from MySQL alone.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, cfg.JWTSecret))

	router.RegisterRoutes(e)
	router.RegisterUsers(e, authH, userH, cfg.JWTSecret)
	router.RegisterStations(e, stationH, telemetryH, stations, cfg.JWTSecret, config.LoadCacheConfig(), rdb)

	// The consumer appends ingested readings to logs/telemetry.log and
	// reconnects on broker failures; it never takes the API down with it.
	go func() {
		if err := queue.StartTelemetryConsumer(); err != nil {
			log.Printf("telemetry consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
