// This file defines repository methods for weather stations: registration,
// lookups by id and by API access key, owner/visibility scoped listings, the
// partial location/visibility update and the transactional cascade delete.
// Authorization decisions (owner vs admin) are made by the caller; the
// repository only persists what it is told to.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Musah95/wapi-2/internal/model"
)

// ErrStationNotFound is returned when a station cannot be found in the DB.
var ErrStationNotFound = errors.New("station not found")

// StationRepo encapsulates all database queries related to stations.  It
// depends on a sql.DB connection which should be configured elsewhere.
type StationRepo struct {
	db *sql.DB
}

// NewStationRepo constructs a StationRepo with the provided DB handle.  This
// allows dependency injection of the database in tests and at startup.
func NewStationRepo(db *sql.DB) *StationRepo {
	return &StationRepo{db: db}
}

const stationCols = `station_id, api_access_key, station_name, unique_code, location, owner,
	is_public, created_at, last_updated, temperature, pressure, humidity,
	wind_speed, wind_direction, uv_index, is_raining`

func scanStation(row interface{ Scan(...any) error }) (*model.Station, error) {
	var s model.Station
	var last sql.NullTime
	err := row.Scan(&s.ID, &s.APIAccessKey, &s.StationName, &s.UniqueCode, &s.Location, &s.Owner,
		&s.IsPublic, &s.CreatedAt, &last, &s.Temperature, &s.Pressure, &s.Humidity,
		&s.WindSpeed, &s.WindDirection, &s.UVIndex, &s.IsRaining)
	if err != nil {
		return nil, err
	}
	if last.Valid {
		t := last.Time
		s.LastUpdated = &t
	}
	return &s, nil
}

// Create inserts a new station into the database.  On success the station's
// ID and CreatedAt fields are populated; a follow-up SELECT fetches the
// server-assigned timestamp so callers receive a fully populated record.
// A uniqueness violation on (station_name, unique_code) is translated to
// ErrConflict.
func (r *StationRepo) Create(ctx context.Context, s *model.Station) error {
	const qInsert = `INSERT INTO stations
		(api_access_key, station_name, unique_code, location, owner, is_public)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		s.APIAccessKey, s.StationName, s.UniqueCode, s.Location, s.Owner, s.IsPublic)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)

	// Follow-up SELECT to populate the default created_at timestamp.
	const qSelect = "SELECT created_at FROM stations WHERE station_id = ?"
	return r.db.QueryRowContext(ctx, qSelect, s.ID).Scan(&s.CreatedAt)
}

// GetByID fetches a station by its ID regardless of owner.  It returns
// ErrStationNotFound if no row is found.  Existence must always be checked
// through this method before any visibility decision dereferences the row.
func (r *StationRepo) GetByID(ctx context.Context, id uint64) (*model.Station, error) {
	s, err := scanStation(r.db.QueryRowContext(ctx,
		"SELECT "+stationCols+" FROM stations WHERE station_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStationNotFound
	}
	return s, err
}

// GetByAPIKey resolves a station credential by exact match against the
// stored API access keys.  A miss returns ErrStationNotFound; callers
// report it as an invalid-key 403, never a 404, so the error kind does not
// leak whether any station exists.
func (r *StationRepo) GetByAPIKey(ctx context.Context, key string) (*model.Station, error) {
	s, err := scanStation(r.db.QueryRowContext(ctx,
		"SELECT "+stationCols+" FROM stations WHERE api_access_key = ?", key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStationNotFound
	}
	return s, err
}

// ListAll returns every station ordered by id.  Used by the admin variant of
// the "all stations" listing.
func (r *StationRepo) ListAll(ctx context.Context) ([]*model.Station, error) {
	return r.list(ctx, "SELECT "+stationCols+" FROM stations ORDER BY station_id")
}

// ListByOwner returns the stations owned by a specific user ordered by id.
func (r *StationRepo) ListByOwner(ctx context.Context, owner string) ([]*model.Station, error) {
	return r.list(ctx, "SELECT "+stationCols+" FROM stations WHERE owner = ? ORDER BY station_id", owner)
}

// ListPublic returns the stations whose is_public flag is set, ordered by id.
func (r *StationRepo) ListPublic(ctx context.Context) ([]*model.Station, error) {
	return r.list(ctx, "SELECT "+stationCols+" FROM stations WHERE is_public = ? ORDER BY station_id", true)
}

func (r *StationRepo) list(ctx context.Context, q string, args ...any) ([]*model.Station, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Station
	for rows.Next() {
		s, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CodeExists reports whether a unique code is already taken within the scope
// of a station name.  Used by the code generator's retry loop.
func (r *StationRepo) CodeExists(ctx context.Context, stationName, code string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stations WHERE station_name = ? AND unique_code = ?",
		stationName, code).Scan(&n)
	return n > 0, err
}

// Update applies a partial patch: only non-nil fields are written, omitted
// fields stay unchanged.  A nil/nil patch is a no-op.  Returns
// ErrStationNotFound when no row matches the id.
func (r *StationRepo) Update(ctx context.Context, id uint64, location *string, isPublic *bool) error {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *location)
	}
	if isPublic != nil {
		sets = append(sets, "is_public = ?")
		args = append(args, *isPublic)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	q := "UPDATE stations SET " + strings.Join(sets, ", ") + " WHERE station_id = ?"
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL counts rows changed, not rows matched, so a patch that
		// re-sends the current values affects zero rows.  Re-check existence
		// before declaring the station gone.
		var exists uint64
		scanErr := r.db.QueryRowContext(ctx,
			"SELECT station_id FROM stations WHERE station_id = ?", id).Scan(&exists)
		if errors.Is(scanErr, sql.ErrNoRows) {
			return ErrStationNotFound
		}
		return scanErr
	}
	return nil
}

// Delete removes a station together with all of its historical data rows.
// Both deletes run in one transaction so either the station and its history
// disappear together or neither does.  Returns ErrStationNotFound when the
// station does not exist.
func (r *StationRepo) Delete(ctx context.Context, id uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// A failed commit leaves the station in place; the caller must hear
	// about it rather than report the delete as done.
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	var exists uint64
	if err = tx.QueryRowContext(ctx, "SELECT station_id FROM stations WHERE station_id = ?", id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrStationNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM data WHERE station_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM stations WHERE station_id = ?", id); err != nil {
		return err
	}
	return nil
}
