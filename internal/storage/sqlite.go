package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tum-esm/sensorboard/internal/telemetry"
)

type sqliteStorage struct {
	db *sql.DB
}

// payload is the JSON stored in the data column.
type payload struct {
	Value    map[string]any `json:"value,omitempty"`
	Severity string         `json:"severity,omitempty"`
	Subject  string         `json:"subject,omitempty"`
	Details  string         `json:"details,omitempty"`
}

// NewSQLiteStorage opens (and if needed creates) the database at dbPath.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// ":memory:" databases exist per connection.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStorage{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sensor TEXT NOT NULL,
			kind TEXT NOT NULL,
			ts REAL NOT NULL,
			revision INTEGER,
			data TEXT NOT NULL,
			UNIQUE(sensor, kind, ts)
		);
		CREATE INDEX IF NOT EXISTS idx_history_lookup
			ON history(sensor, ts);
	`)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func (s *sqliteStorage) save(records []Record) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO history (sensor, kind, ts, revision, data) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, r := range records {
		data, err := json.Marshal(payload{
			Value:    r.Value,
			Severity: r.Severity,
			Subject:  r.Subject,
			Details:  r.Details,
		})
		if err != nil {
			return 0, fmt.Errorf("marshal record: %w", err)
		}

		var revision sql.NullInt64
		if r.Revision != nil {
			revision = sql.NullInt64{Int64: int64(*r.Revision), Valid: true}
		}

		res, err := stmt.Exec(r.Sensor, string(r.Kind), float64(r.Timestamp), revision, string(data))
		if err != nil {
			return 0, fmt.Errorf("insert: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return added, nil
}

func (s *sqliteStorage) SaveMeasurements(sensor string, ms []telemetry.Measurement) (int, error) {
	return s.save(measurementRecords(sensor, ms))
}

func (s *sqliteStorage) SaveLogs(sensor string, logs []telemetry.LogEntry) (int, error) {
	return s.save(logRecords(sensor, logs))
}

func (s *sqliteStorage) LastSeen(sensor string) (time.Time, bool, error) {
	var ts sql.NullFloat64
	err := s.db.QueryRow(`SELECT MAX(ts) FROM history WHERE sensor = ?`, sensor).Scan(&ts)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return telemetry.Timestamp(ts.Float64).Time(), true, nil
}

func (s *sqliteStorage) History(sensor string, from, to time.Time) ([]Record, error) {
	lo, hi := bounds(from, to)

	rows, err := s.db.Query(
		`SELECT sensor, kind, ts, revision, data FROM history
		 WHERE sensor = ? AND ts >= ? AND ts <= ?
		 ORDER BY ts ASC, kind DESC`,
		sensor, float64(lo), float64(hi),
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var (
			r        Record
			kind     string
			ts       float64
			revision sql.NullInt64
			data     string
		)
		if err := rows.Scan(&r.Sensor, &kind, &ts, &revision, &data); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		var p payload
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}

		r.Kind = Kind(kind)
		r.Timestamp = telemetry.Timestamp(ts)
		if revision.Valid {
			rev := int(revision.Int64)
			r.Revision = &rev
		}
		r.Value = p.Value
		r.Severity = p.Severity
		r.Subject = p.Subject
		r.Details = p.Details

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return records, nil
}

func (s *sqliteStorage) Cleanup(olderThan time.Time) error {
	_, err := s.db.Exec(`DELETE FROM history WHERE ts < ?`, float64(telemetry.TimestampOf(olderThan)))
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

func (s *sqliteStorage) Close() error {
	return s.db.Close()
}
