package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Musah95/wapi-2/internal/model"
)

const readingBody = `{"location":"Accra","temperature":29.5,"pressure":1011.3,
	"humidity":70,"wind_speed":9.5,"wind_direction":"SW","uv_index":4.2,"is_raining":false}`

// ingest posts a reading through the handler with the station credential
// already resolved, the way the API-key middleware leaves it.
func ingest(t *testing.T, e *env, st *model.Station, body string) int {
	t.Helper()
	c, rec := e.request(http.MethodPost, "/stations/data", body)
	c.Set("station", st)
	if err := e.telemetry.CreateData(c); err != nil {
		t.Fatalf("CreateData: %v", err)
	}
	return rec.Code
}

func loadStation(t *testing.T, e *env, idStr string) *model.Station {
	t.Helper()
	var id uint64
	if _, err := fmt.Sscan(idStr, &id); err != nil {
		t.Fatalf("parse id %q: %v", idStr, err)
	}
	st, err := e.stations.GetByID(t.Context(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return st
}

func TestCreateData(t *testing.T) {
	e := setupEnv(t)
	alice := e.newUser(t, "alice", false)
	id := stationID(t, createStation(t, e, alice, "rooftop"))
	st := loadStation(t, e, id)

	if code := ingest(t, e, st, readingBody); code != http.StatusCreated {
		t.Fatalf("ingest status = %d; want 201", code)
	}

	// The snapshot on the station record now mirrors the reading.
	after := loadStation(t, e, id)
	if after.Temperature != 29.5 || after.WindDirection != "SW" {
		t.Errorf("snapshot not updated: %+v", after)
	}
	if after.LastUpdated == nil {
		t.Error("last_updated still unset after ingest")
	}

	t.Run("missing location", func(t *testing.T) {
		if code := ingest(t, e, st, `{"temperature":20}`); code != http.StatusBadRequest {
			t.Errorf("status = %d; want 400", code)
		}
	})

	t.Run("no station credential", func(t *testing.T) {
		c, rec := e.request(http.MethodPost, "/stations/data", readingBody)
		if err := e.telemetry.CreateData(c); err != nil {
			t.Fatalf("CreateData: %v", err)
		}
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d; want 403", rec.Code)
		}
	})

	t.Run("station deleted after key resolution", func(t *testing.T) {
		gone := &model.Station{ID: 999, StationName: "ghost"}
		if code := ingest(t, e, gone, readingBody); code != http.StatusNotFound {
			t.Errorf("status = %d; want 404", code)
		}
	})
}

func TestLatestMetrics(t *testing.T) {
	e := setupEnv(t)
	alice := e.newUser(t, "alice", false)
	id := stationID(t, createStation(t, e, alice, "rooftop"))
	st := loadStation(t, e, id)

	latest := func() (int, []map[string]any) {
		c, rec := e.request(http.MethodGet, "/stations/"+id+"/latest_metrics", "")
		withParamID(c, id)
		if err := e.telemetry.LatestMetrics(c); err != nil {
			t.Fatalf("LatestMetrics: %v", err)
		}
		var resp []map[string]any
		decode(t, rec, &resp)
		return rec.Code, resp
	}

	t.Run("empty history", func(t *testing.T) {
		code, resp := latest()
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if len(resp) != 0 {
			t.Errorf("got %d points; want 0", len(resp))
		}
	})

	for _, temp := range []float64{20, 21, 22} {
		body := fmt.Sprintf(`{"location":"Accra","temperature":%v,"wind_direction":"N"}`, temp)
		if code := ingest(t, e, st, body); code != http.StatusCreated {
			t.Fatalf("ingest status = %d", code)
		}
	}

	t.Run("two newest, newest first", func(t *testing.T) {
		code, resp := latest()
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if len(resp) != 2 {
			t.Fatalf("got %d points; want 2", len(resp))
		}
		if resp[0]["temperature"] != 22.0 || resp[1]["temperature"] != 21.0 {
			t.Errorf("order = [%v, %v]; want [22, 21]", resp[0]["temperature"], resp[1]["temperature"])
		}
	})

	t.Run("unknown station yields empty list", func(t *testing.T) {
		c, rec := e.request(http.MethodGet, "/stations/999/latest_metrics", "")
		withParamID(c, "999")
		if err := e.telemetry.LatestMetrics(c); err != nil {
			t.Fatalf("LatestMetrics: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		var resp []map[string]any
		decode(t, rec, &resp)
		if len(resp) != 0 {
			t.Errorf("got %d points; want 0", len(resp))
		}
	})
}

// seedHistory writes data rows with fixed timestamps straight to the table so
// window assertions are deterministic.
func seedHistory(t *testing.T, e *env, idStr string, temps map[time.Time]float64) {
	t.Helper()
	st := loadStation(t, e, idStr)
	for ts, temp := range temps {
		_, err := e.db.Exec(`INSERT INTO data
			(station_id, location, temperature, pressure, humidity,
			 wind_speed, wind_direction, uv_index, is_raining, created_at)
			VALUES (?, 'Accra', ?, 1010, 50, 5, 'N', 3, 0, ?)`,
			st.ID, temp, ts)
		if err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}
}

func TestHistoricalData(t *testing.T) {
	e := setupEnv(t)
	alice := e.newUser(t, "alice", false)
	bob := e.newUser(t, "bob", false)
	id := stationID(t, createStation(t, e, alice, "rooftop"))

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	seedHistory(t, e, id, map[time.Time]float64{
		base:                     20, // 25h before the newest, outside the default window
		base.Add(2 * time.Hour):  21,
		base.Add(20 * time.Hour): 22,
		base.Add(25 * time.Hour): 23,
	})

	history := func(uid uint64, query string) (int, []map[string]any) {
		c, rec := e.request(http.MethodGet, "/stations/"+id+"/historical_data"+query, "")
		withParamID(c, id)
		if uid != 0 {
			asUser(c, uid)
		}
		if err := e.telemetry.HistoricalData(c); err != nil {
			t.Fatalf("HistoricalData: %v", err)
		}
		var resp []map[string]any
		if rec.Code == http.StatusOK {
			decode(t, rec, &resp)
		}
		return rec.Code, resp
	}

	t.Run("private station refuses other users", func(t *testing.T) {
		code, _ := history(bob, "")
		if code != http.StatusForbidden {
			t.Errorf("status = %d; want 403", code)
		}
	})

	t.Run("default window is 24h before newest reading", func(t *testing.T) {
		code, resp := history(alice, "")
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		// The row 25 hours before the newest falls outside; the rest are
		// returned oldest first.
		if len(resp) != 3 {
			t.Fatalf("got %d points; want 3", len(resp))
		}
		if resp[0]["temperature"] != 21.0 || resp[2]["temperature"] != 23.0 {
			t.Errorf("window edges = [%v .. %v]; want [21 .. 23]", resp[0]["temperature"], resp[2]["temperature"])
		}
	})

	t.Run("explicit bounds are inclusive", func(t *testing.T) {
		q := "?start_time=2026-08-30T14:00:00&end_time=2026-08-31T08:00:00"
		code, resp := history(alice, q)
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if len(resp) != 2 {
			t.Fatalf("got %d points; want 2", len(resp))
		}
		if resp[0]["temperature"] != 21.0 || resp[1]["temperature"] != 22.0 {
			t.Errorf("points = [%v, %v]; want [21, 22]", resp[0]["temperature"], resp[1]["temperature"])
		}
	})

	t.Run("zoned timestamps accepted", func(t *testing.T) {
		q := "?start_time=2026-08-30T14:00:00%2B00:00"
		code, resp := history(alice, q)
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if len(resp) != 3 {
			t.Errorf("got %d points; want 3", len(resp))
		}
	})

	t.Run("malformed bound", func(t *testing.T) {
		code, _ := history(alice, "?start_time=yesterday")
		if code != http.StatusBadRequest {
			t.Errorf("status = %d; want 400", code)
		}
	})

	t.Run("window matching nothing", func(t *testing.T) {
		code, _ := history(alice, "?start_time=2027-01-01T00:00:00")
		if code != http.StatusNotFound {
			t.Errorf("status = %d; want 404", code)
		}
	})

	t.Run("unknown station", func(t *testing.T) {
		c, rec := e.request(http.MethodGet, "/stations/999/historical_data", "")
		withParamID(c, "999")
		asUser(c, alice)
		if err := e.telemetry.HistoricalData(c); err != nil {
			t.Fatalf("HistoricalData: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d; want 404", rec.Code)
		}
	})

	t.Run("station with no data", func(t *testing.T) {
		emptyID := stationID(t, createStation(t, e, alice, "bare"))
		c, rec := e.request(http.MethodGet, "/stations/"+emptyID+"/historical_data", "")
		withParamID(c, emptyID)
		asUser(c, alice)
		if err := e.telemetry.HistoricalData(c); err != nil {
			t.Fatalf("HistoricalData: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d; want 404", rec.Code)
		}
	})
}
