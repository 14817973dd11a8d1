// This file defines repository methods for historical weather readings.
// RecordReading is the ingest path: it overwrites the owning station's
// current snapshot and appends one immutable data row inside a single
// transaction, so the snapshot and the history can never diverge.  The
// query methods implement the time-window retrieval used by the historical
// endpoint and the two-row lookup used for trend computation.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Musah95/wapi-2/internal/model"
)

// ErrNoData is returned when a station has no historical rows (so no default
// window can be derived) or when a resolved window matches nothing.
var ErrNoData = errors.New("no data found")

// DataRepo encapsulates all database queries related to historical readings.
type DataRepo struct {
	db *sql.DB
}

// NewDataRepo constructs a DataRepo with the provided DB handle.
func NewDataRepo(db *sql.DB) *DataRepo {
	return &DataRepo{db: db}
}

const dataCols = `data_id, station_id, location, temperature, pressure, humidity,
	wind_speed, wind_direction, uv_index, is_raining, created_at`

// RecordReading applies one ingest call for the station identified by
// stationID: the station's snapshot columns, location and last_updated are
// overwritten and a new data row is appended, both inside one transaction.
// On success d.ID, d.StationID and d.CreatedAt are populated.  The timestamp
// is assigned here in UTC so two ingests arriving in the same second still
// carry distinct, ordered values.
func (r *DataRepo) RecordReading(ctx context.Context, stationID uint64, d *model.Data) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// The commit error must reach the caller: a reading the database never
	// durably accepted cannot be reported as recorded.
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	now := time.Now().UTC()

	const qSnapshot = `UPDATE stations SET
		location = ?, temperature = ?, pressure = ?, humidity = ?,
		wind_speed = ?, wind_direction = ?, uv_index = ?, is_raining = ?,
		last_updated = ?
		WHERE station_id = ?`
	res, err := tx.ExecContext(ctx, qSnapshot,
		d.Location, d.Temperature, d.Pressure, d.Humidity,
		d.WindSpeed, d.WindDirection, d.UVIndex, d.IsRaining,
		now, stationID)
	if err != nil {
		return err
	}
	// RowsAffected is zero when the station row vanished between credential
	// resolution and this write: roll back rather than orphan a data row.
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL also reports zero affected rows when the new values equal the
		// old ones, so re-check existence before declaring the station gone.
		var exists uint64
		scanErr := tx.QueryRowContext(ctx,
			"SELECT station_id FROM stations WHERE station_id = ?", stationID).Scan(&exists)
		if errors.Is(scanErr, sql.ErrNoRows) {
			err = ErrStationNotFound
			return err
		}
		if scanErr != nil {
			err = scanErr
			return err
		}
	}

	const qInsert = `INSERT INTO data
		(station_id, location, temperature, pressure, humidity,
		 wind_speed, wind_direction, uv_index, is_raining, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	ins, err := tx.ExecContext(ctx, qInsert,
		stationID, d.Location, d.Temperature, d.Pressure, d.Humidity,
		d.WindSpeed, d.WindDirection, d.UVIndex, d.IsRaining, now)
	if err != nil {
		return err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	d.StationID = stationID
	d.CreatedAt = now
	return nil
}

// Latest returns at most limit readings for a station, newest first.  Ties on
// created_at fall back to insertion order so the most recently written row
// wins.
func (r *DataRepo) Latest(ctx context.Context, stationID uint64, limit int) ([]model.Data, error) {
	const q = "SELECT " + dataCols + ` FROM data
		WHERE station_id = ?
		ORDER BY created_at DESC, data_id DESC
		LIMIT ?`
	return r.query(ctx, q, stationID, limit)
}

// LatestTimestamp returns the created_at of the newest reading for a station.
// ErrNoData is returned when the station has no history at all.
func (r *DataRepo) LatestTimestamp(ctx context.Context, stationID uint64) (time.Time, error) {
	const q = `SELECT created_at FROM data
		WHERE station_id = ?
		ORDER BY created_at DESC, data_id DESC
		LIMIT 1`
	var t time.Time
	if err := r.db.QueryRowContext(ctx, q, stationID).Scan(&t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrNoData
		}
		return time.Time{}, err
	}
	return t, nil
}

// ListRange returns the readings whose created_at lies inside the window,
// inclusive on both ends.  A nil bound leaves that side unbounded.  Rows are
// ordered chronologically, ties broken by insertion order.  ErrNoData is
// returned when the window matches nothing.
func (r *DataRepo) ListRange(ctx context.Context, stationID uint64, start, end *time.Time) ([]model.Data, error) {
	q := "SELECT " + dataCols + " FROM data WHERE station_id = ?"
	args := []any{stationID}
	if start != nil {
		q += " AND created_at >= ?"
		args = append(args, *start)
	}
	if end != nil {
		q += " AND created_at <= ?"
		args = append(args, *end)
	}
	q += " ORDER BY created_at ASC, data_id ASC"

	out, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

func (r *DataRepo) query(ctx context.Context, q string, args ...any) ([]model.Data, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Data
	for rows.Next() {
		var d model.Data
		if err := rows.Scan(&d.ID, &d.StationID, &d.Location, &d.Temperature, &d.Pressure,
			&d.Humidity, &d.WindSpeed, &d.WindDirection, &d.UVIndex, &d.IsRaining, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
