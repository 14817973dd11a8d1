package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/Musah95/wapi-2/internal/config"
	"github.com/Musah95/wapi-2/internal/repository"
)

const testSchema = `
CREATE TABLE users (
	user_id    INTEGER PRIMARY KEY AUTOINCREMENT,
	username   TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	is_admin   BOOLEAN NOT NULL DEFAULT 0,
	stations   INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE stations (
	station_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	api_access_key TEXT NOT NULL UNIQUE,
	station_name   TEXT NOT NULL,
	unique_code    TEXT NOT NULL,
	location       TEXT NOT NULL,
	owner          TEXT NOT NULL,
	is_public      BOOLEAN NOT NULL DEFAULT 0,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_updated   TIMESTAMP,
	temperature    REAL NOT NULL DEFAULT 0,
	pressure       REAL NOT NULL DEFAULT 0,
	humidity       REAL NOT NULL DEFAULT 0,
	wind_speed     REAL NOT NULL DEFAULT 0,
	wind_direction TEXT NOT NULL DEFAULT '',
	uv_index       REAL NOT NULL DEFAULT 0,
	is_raining     BOOLEAN NOT NULL DEFAULT 0,
	UNIQUE (station_name, unique_code)
);

CREATE TABLE data (
	data_id        INTEGER PRIMARY KEY AUTOINCREMENT,
	station_id     INTEGER NOT NULL,
	location       TEXT NOT NULL,
	temperature    REAL NOT NULL,
	pressure       REAL NOT NULL,
	humidity       REAL NOT NULL,
	wind_speed     REAL NOT NULL,
	wind_direction TEXT NOT NULL,
	uv_index       REAL NOT NULL,
	is_raining     BOOLEAN NOT NULL,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// env bundles everything a handler test needs: the in-memory database, the
// repositories and the handlers wired the same way cmd/server wires them.
type env struct {
	db       *sql.DB
	users    *repository.UserRepo
	stations *repository.StationRepo
	data     *repository.DataRepo

	auth      *AuthHandler
	user      *UserHandler
	station   *StationHandler
	telemetry *TelemetryHandler

	echo *echo.Echo
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		JWTSecret:    "test-secret",
		AccessTTLMin: 5,
		BcryptCost:   bcrypt.MinCost,
	}
	users := repository.NewUserRepo(db)
	stations := repository.NewStationRepo(db)
	data := repository.NewDataRepo(db)

	return &env{
		db:        db,
		users:     users,
		stations:  stations,
		data:      data,
		auth:      NewAuthHandler(cfg, users),
		user:      NewUserHandler(cfg, users),
		station:   NewStationHandler(cfg, users, stations),
		telemetry: NewTelemetryHandler(users, stations, data),
		echo:      echo.New(),
	}
}

// newUser registers an account through the signup handler and returns its id.
// The admin flag is flipped directly since no endpoint grants it.
func (e *env) newUser(t *testing.T, username string, admin bool) uint64 {
	t.Helper()
	c, rec := e.request(http.MethodPost, "/users/", `{"username":"`+username+`","password":"pw"}`)
	if err := e.user.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Register status = %d, body %s", rec.Code, rec.Body.String())
	}
	u, err := e.users.GetByUsername(c.Request().Context(), username)
	if err != nil {
		t.Fatalf("load %q: %v", username, err)
	}
	if admin {
		if _, err := e.db.Exec("UPDATE users SET is_admin = 1 WHERE user_id = ?", u.ID); err != nil {
			t.Fatalf("promote %q: %v", username, err)
		}
	}
	return u.ID
}

// request builds an echo context carrying a JSON body.
func (e *env) request(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.echo.NewContext(req, rec), rec
}

// asUser injects the token subject the way the JWT middleware does.
func asUser(c echo.Context, uid uint64) { c.Set("user_id", float64(uid)) }

func withParamID(c echo.Context, id string) {
	c.SetParamNames("id")
	c.SetParamValues(id)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
