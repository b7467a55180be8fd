package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"poissonkit/domain/catalog"
	"poissonkit/domain/conformance"
	"poissonkit/domain/core"
	"poissonkit/domain/report"
	"poissonkit/ports"
)

// ReportRepository implements ports.ResultLedger for PostgreSQL
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db *sqlx.DB) ports.ResultLedger {
	return &ReportRepository{db: db}
}

// SaveReport stores a battery report and all its zone rows in one
// transaction.
func (r *ReportRepository) SaveReport(ctx context.Context, rep *report.BatteryReport) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO battery_reports (id, created_at, runtime_ms)
		VALUES ($1, $2, $3)
	`, rep.ID.String(), rep.CreatedAt, rep.RuntimeMs)
	if err != nil {
		return err
	}

	for _, zone := range rep.Zones {
		s := zone.Summary
		_, err = tx.ExecContext(ctx, `
			INSERT INTO battery_zones (report_id, zone, events, rate, mean_gap, max_gap, first_at, last_at, duration)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, rep.ID.String(), zone.Zone.String(), s.Events, s.Rate, s.MeanGap, s.MaxGap, s.FirstAt, s.LastAt, s.Duration)
		if err != nil {
			return err
		}
		for _, res := range zone.Results {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO battery_results (report_id, zone, test, statistic, p_value, sample_size, warnings, diagnostic, skipped)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL)
			`, rep.ID.String(), zone.Zone.String(), string(res.Test), res.Statistic, res.PValue, res.SampleSize,
				encodeWarnings(res.Warnings), nullIfEmpty(res.Diagnostic))
			if err != nil {
				return err
			}
		}
		for test, reason := range zone.Skipped {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO battery_results (report_id, zone, test, statistic, p_value, sample_size, warnings, diagnostic, skipped)
				VALUES ($1, $2, $3, NULL, NULL, NULL, NULL, NULL, $4)
			`, rep.ID.String(), zone.Zone.String(), string(test), reason)
			if err != nil {
				return err
			}
		}
	}

	for test, combined := range rep.Combined {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO battery_combined (report_id, test, method, statistic, p_value, combined)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, rep.ID.String(), string(test), string(combined.Method), combined.Statistic, combined.PValue, combined.Combined)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetReport loads one report with its zone rows and combined p-values.
func (r *ReportRepository) GetReport(ctx context.Context, id string) (*report.BatteryReport, error) {
	var header struct {
		ID        string    `db:"id"`
		CreatedAt time.Time `db:"created_at"`
		RuntimeMs int64     `db:"runtime_ms"`
	}
	err := r.db.GetContext(ctx, &header, `
		SELECT id, created_at, runtime_ms FROM battery_reports WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}

	rep := &report.BatteryReport{
		ID:        core.ReportID(header.ID),
		CreatedAt: header.CreatedAt,
		RuntimeMs: header.RuntimeMs,
		Combined:  make(map[conformance.TestName]conformance.CombinedResult),
	}

	var zoneRows []struct {
		Zone     string  `db:"zone"`
		Events   int     `db:"events"`
		Rate     float64 `db:"rate"`
		MeanGap  float64 `db:"mean_gap"`
		MaxGap   float64 `db:"max_gap"`
		FirstAt  float64 `db:"first_at"`
		LastAt   float64 `db:"last_at"`
		Duration float64 `db:"duration"`
	}
	err = r.db.SelectContext(ctx, &zoneRows, `
		SELECT zone, events, rate, mean_gap, max_gap, first_at, last_at, duration
		FROM battery_zones WHERE report_id = $1 ORDER BY zone
	`, id)
	if err != nil {
		return nil, err
	}

	zones := make(map[string]*report.ZoneResult)
	var order []string
	for _, row := range zoneRows {
		zones[row.Zone] = &report.ZoneResult{
			Zone: core.ZoneKey(row.Zone),
			Summary: catalog.Summary{
				Events:   row.Events,
				Rate:     row.Rate,
				MeanGap:  row.MeanGap,
				MaxGap:   row.MaxGap,
				FirstAt:  row.FirstAt,
				LastAt:   row.LastAt,
				Duration: row.Duration,
			},
		}
		order = append(order, row.Zone)
	}

	var rows []struct {
		Zone       string          `db:"zone"`
		Test       string          `db:"test"`
		Statistic  sql.NullFloat64 `db:"statistic"`
		PValue     sql.NullFloat64 `db:"p_value"`
		SampleSize sql.NullInt64   `db:"sample_size"`
		Warnings   sql.NullString  `db:"warnings"`
		Diagnostic sql.NullString  `db:"diagnostic"`
		Skipped    sql.NullString  `db:"skipped"`
	}
	err = r.db.SelectContext(ctx, &rows, `
		SELECT zone, test, statistic, p_value, sample_size, warnings, diagnostic, skipped
		FROM battery_results WHERE report_id = $1 ORDER BY zone, test
	`, id)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		zr, ok := zones[row.Zone]
		if !ok {
			zr = &report.ZoneResult{Zone: core.ZoneKey(row.Zone)}
			zones[row.Zone] = zr
			order = append(order, row.Zone)
		}
		if row.Skipped.Valid {
			if zr.Skipped == nil {
				zr.Skipped = make(map[conformance.TestName]string)
			}
			zr.Skipped[conformance.TestName(row.Test)] = row.Skipped.String
			continue
		}
		zr.Results = append(zr.Results, conformance.TestResult{
			Test:       conformance.TestName(row.Test),
			Statistic:  row.Statistic.Float64,
			PValue:     row.PValue.Float64,
			SampleSize: int(row.SampleSize.Int64),
			Warnings:   decodeWarnings(row.Warnings),
			Diagnostic: row.Diagnostic.String,
		})
	}
	for _, zone := range order {
		rep.Zones = append(rep.Zones, *zones[zone])
	}

	var combined []struct {
		Test      string  `db:"test"`
		Method    string  `db:"method"`
		Statistic float64 `db:"statistic"`
		PValue    float64 `db:"p_value"`
		Combined  int     `db:"combined"`
	}
	err = r.db.SelectContext(ctx, &combined, `
		SELECT test, method, statistic, p_value, combined
		FROM battery_combined WHERE report_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	for _, row := range combined {
		rep.Combined[conformance.TestName(row.Test)] = conformance.CombinedResult{
			Method:    conformance.CombineMethod(row.Method),
			Statistic: row.Statistic,
			PValue:    row.PValue,
			Combined:  row.Combined,
		}
	}

	return rep, nil
}

// encodeWarnings packs warning codes into one comma-separated column;
// NULL stands for "no warnings". Codes never contain commas.
func encodeWarnings(ws []conformance.WarningCode) sql.NullString {
	if len(ws) == 0 {
		return sql.NullString{}
	}
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = string(w)
	}
	return sql.NullString{String: strings.Join(parts, ","), Valid: true}
}

func decodeWarnings(s sql.NullString) []conformance.WarningCode {
	if !s.Valid || s.String == "" {
		return nil
	}
	parts := strings.Split(s.String, ",")
	ws := make([]conformance.WarningCode, len(parts))
	for i, p := range parts {
		ws[i] = conformance.WarningCode(p)
	}
	return ws
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ListReports returns the most recent report headers, newest first. Zone
// rows are not hydrated; use GetReport for the full report.
func (r *ReportRepository) ListReports(ctx context.Context, limit int) ([]*report.BatteryReport, error) {
	query := `SELECT id, created_at, runtime_ms FROM battery_reports ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var headers []struct {
		ID        string    `db:"id"`
		CreatedAt time.Time `db:"created_at"`
		RuntimeMs int64     `db:"runtime_ms"`
	}
	if err := r.db.SelectContext(ctx, &headers, query, args...); err != nil {
		return nil, err
	}

	reports := make([]*report.BatteryReport, 0, len(headers))
	for _, h := range headers {
		reports = append(reports, &report.BatteryReport{
			ID:        core.ReportID(h.ID),
			CreatedAt: h.CreatedAt,
			RuntimeMs: h.RuntimeMs,
		})
	}
	return reports, nil
}
