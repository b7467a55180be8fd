package ports

import (
	"context"

	"poissonkit/domain/report"
)

// ResultLedger persists battery reports. Implementations must store a
// report atomically: either the whole report with all zone rows lands, or
// nothing does. GetReport hydrates everything SaveReport was given,
// including per-zone summaries and per-result warnings and diagnostics.
type ResultLedger interface {
	SaveReport(ctx context.Context, r *report.BatteryReport) error
	GetReport(ctx context.Context, id string) (*report.BatteryReport, error)
	ListReports(ctx context.Context, limit int) ([]*report.BatteryReport, error)
}
