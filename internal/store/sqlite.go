package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"weathersuggest/internal/suggest"
)

// SQLiteStore is the durable, append-only implementation of
// suggest.Store. sqlite assigns ids through AUTOINCREMENT, which keeps
// them monotonic and never reused, and serializes concurrent appends.
type SQLiteStore struct {
	db           *sql.DB
	defaultLimit int
	maxLimit     int
}

// NewSQLiteStore opens (or creates) the database at path and configures
// WAL mode. defaultLimit applies when ListRecent gets no limit; maxLimit
// clamps whatever the caller asks for.
func NewSQLiteStore(path string, defaultLimit, maxLimit int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %s: %w", pragma, err)
		}
	}

	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit <= 0 {
		maxLimit = 200
	}
	return &SQLiteStore{db: db, defaultLimit: defaultLimit, maxLimit: maxLimit}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS suggestions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	city          TEXT NOT NULL,
	description   TEXT NOT NULL,
	temperature_c REAL NOT NULL DEFAULT 0,
	humidity_pct  INTEGER NOT NULL DEFAULT 0,
	wind_speed    REAL NOT NULL DEFAULT 0,
	aqi_value     INTEGER NOT NULL DEFAULT 0,
	aqi_label     TEXT NOT NULL DEFAULT 'Unknown',
	is_night      INTEGER NOT NULL DEFAULT 0,
	suggestion    TEXT NOT NULL,
	created_at    DATETIME NOT NULL,
	order_id      TEXT
);

CREATE INDEX IF NOT EXISTS idx_suggestions_city ON suggestions(city);
`

// Migrate applies the schema. Evolution is additive-only: new columns
// always carry defaults, so rows written by older versions keep reading
// back with neutral values. Safe to run on every start.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, migration); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append stores a new record, assigning its id and creation timestamp.
func (s *SQLiteStore) Append(ctx context.Context, rec suggest.SuggestionRecord) (suggest.SuggestionRecord, error) {
	rec.CreatedAt = time.Now().UTC()
	rec.OrderID = ""

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO suggestions
		 (city, description, temperature_c, humidity_pct, wind_speed, aqi_value, aqi_label, is_night, suggestion, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.City, rec.Description, rec.TemperatureC, rec.HumidityPct, rec.WindSpeedMS,
		rec.AQIValue, string(rec.AQILabel), rec.IsNight, rec.Suggestion, rec.CreatedAt,
	)
	if err != nil {
		return suggest.SuggestionRecord{}, storageErr("append", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return suggest.SuggestionRecord{}, storageErr("append id", err)
	}
	rec.ID = id
	return rec, nil
}

const selectColumns = `SELECT id, city, description, temperature_c, humidity_pct, wind_speed,
	aqi_value, aqi_label, is_night, suggestion, created_at, order_id FROM suggestions`

// ListRecent returns records most-recent-first by id. A non-positive
// limit selects the default; oversized limits are clamped.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]suggest.SuggestionRecord, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, storageErr("list recent", err)
	}
	defer rows.Close()

	var recs []suggest.SuggestionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list recent iterate", err)
	}
	return recs, nil
}

// FindLatestByCity returns the most recent record for an exact
// (canonicalized) city match.
func (s *SQLiteStore) FindLatestByCity(ctx context.Context, city string) (suggest.SuggestionRecord, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE city = ? ORDER BY id DESC LIMIT 1`, city)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return suggest.SuggestionRecord{}, fmt.Errorf("%w: no records for city %q", suggest.ErrNotFound, city)
	}
	return rec, err
}

func (s *SQLiteStore) FindByID(ctx context.Context, id int64) (suggest.SuggestionRecord, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return suggest.SuggestionRecord{}, fmt.Errorf("%w: record %d", suggest.ErrNotFound, id)
	}
	return rec, err
}

// AttachOrder tags a record with an order id in a single keyed UPDATE, so
// concurrent checkouts cannot interleave a read-modify-write. Calling it
// again overwrites the previous token; the last write wins.
func (s *SQLiteStore) AttachOrder(ctx context.Context, id int64, orderID string) (suggest.SuggestionRecord, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE suggestions SET order_id = ? WHERE id = ?`, orderID, id)
	if err != nil {
		return suggest.SuggestionRecord{}, storageErr("attach order", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return suggest.SuggestionRecord{}, storageErr("attach order", err)
	}
	if n == 0 {
		return suggest.SuggestionRecord{}, fmt.Errorf("%w: record %d", suggest.ErrNotFound, id)
	}
	return s.FindByID(ctx, id)
}

// helpers

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", suggest.ErrStorageUnavailable, op, err)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (suggest.SuggestionRecord, error) {
	var (
		rec     suggest.SuggestionRecord
		label   string
		isNight int
		orderID sql.NullString
	)

	err := row.Scan(&rec.ID, &rec.City, &rec.Description, &rec.TemperatureC, &rec.HumidityPct,
		&rec.WindSpeedMS, &rec.AQIValue, &label, &isNight, &rec.Suggestion, &rec.CreatedAt, &orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return suggest.SuggestionRecord{}, err
	}
	if err != nil {
		return suggest.SuggestionRecord{}, storageErr("scan record", err)
	}

	rec.AQILabel = suggest.AQILabel(label)
	rec.IsNight = isNight != 0
	rec.CreatedAt = rec.CreatedAt.UTC()
	if orderID.Valid {
		rec.OrderID = orderID.String
	}
	return rec, nil
}
