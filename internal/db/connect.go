package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:certiflow.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/certiflow?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS exams (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  prompt TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS options (
  id TEXT PRIMARY KEY,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  label TEXT NOT NULL,
  is_correct INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS candidate_exams (
  id TEXT PRIMARY KEY,
  candidate_id TEXT NOT NULL,
  exam_id TEXT NOT NULL REFERENCES exams(id),
  status TEXT NOT NULL,
  assessment_code TEXT NOT NULL DEFAULT '',
  max_score INTEGER NOT NULL DEFAULT 0,
  candidate_score INTEGER NOT NULL DEFAULT 0,
  percent_score REAL NOT NULL DEFAULT 0,
  result INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  report_date INTEGER
);

CREATE TABLE IF NOT EXISTS candidate_exam_answers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  candidate_exam_id TEXT NOT NULL REFERENCES candidate_exams(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL,
  chosen_option_id TEXT NOT NULL,
  correct_option_id TEXT NOT NULL,
  is_correct INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  pass_hash TEXT NOT NULL,
  role TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,                      -- e.g., SessionScored
  key TEXT NOT NULL,                      -- natural key: candidateExamID
  data TEXT NOT NULL,                     -- JSON payload
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS exams (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  prompt TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS options (
  id TEXT PRIMARY KEY,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  label TEXT NOT NULL,
  is_correct BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS candidate_exams (
  id TEXT PRIMARY KEY,
  candidate_id TEXT NOT NULL,
  exam_id TEXT NOT NULL REFERENCES exams(id),
  status TEXT NOT NULL,
  assessment_code TEXT NOT NULL DEFAULT '',
  max_score INTEGER NOT NULL DEFAULT 0,
  candidate_score INTEGER NOT NULL DEFAULT 0,
  percent_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  result BOOLEAN NOT NULL DEFAULT FALSE,
  created_at BIGINT NOT NULL,
  report_date BIGINT
);

CREATE TABLE IF NOT EXISTS candidate_exam_answers (
  id BIGSERIAL PRIMARY KEY,
  candidate_exam_id TEXT NOT NULL REFERENCES candidate_exams(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL,
  chosen_option_id TEXT NOT NULL,
  correct_option_id TEXT NOT NULL,
  is_correct BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  pass_hash TEXT NOT NULL,
  role TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
