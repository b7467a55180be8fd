package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// Connect opens a PostgreSQL connection pool for the result ledger.
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, err
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS battery_reports (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	runtime_ms BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS battery_zones (
	report_id TEXT NOT NULL REFERENCES battery_reports(id) ON DELETE CASCADE,
	zone      TEXT NOT NULL,
	events    INTEGER NOT NULL,
	rate      DOUBLE PRECISION NOT NULL,
	mean_gap  DOUBLE PRECISION NOT NULL,
	max_gap   DOUBLE PRECISION NOT NULL,
	first_at  DOUBLE PRECISION NOT NULL,
	last_at   DOUBLE PRECISION NOT NULL,
	duration  DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (report_id, zone)
);

CREATE TABLE IF NOT EXISTS battery_results (
	report_id   TEXT NOT NULL REFERENCES battery_reports(id) ON DELETE CASCADE,
	zone        TEXT NOT NULL,
	test        TEXT NOT NULL,
	statistic   DOUBLE PRECISION,
	p_value     DOUBLE PRECISION,
	sample_size INTEGER,
	warnings    TEXT,
	diagnostic  TEXT,
	skipped     TEXT,
	PRIMARY KEY (report_id, zone, test)
);

CREATE TABLE IF NOT EXISTS battery_combined (
	report_id TEXT NOT NULL REFERENCES battery_reports(id) ON DELETE CASCADE,
	test      TEXT NOT NULL,
	method    TEXT NOT NULL,
	statistic DOUBLE PRECISION NOT NULL,
	p_value   DOUBLE PRECISION NOT NULL,
	combined  INTEGER NOT NULL,
	PRIMARY KEY (report_id, test)
);
`

// EnsureSchema creates the ledger tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
