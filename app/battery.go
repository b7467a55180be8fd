package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"poissonkit/domain/catalog"
	"poissonkit/domain/conformance"
	"poissonkit/domain/core"
	"poissonkit/domain/report"
	"poissonkit/internal"
	"poissonkit/ports"
)

// ZoneCatalog pairs an event catalog with its observation window, keyed by
// the spatial zone it came from.
type ZoneCatalog struct {
	Zone    core.ZoneKey
	Catalog catalog.Catalog
	Window  catalog.Window
}

// BatteryOptions configures a battery run. Zero values select the test
// defaults (unit bin width, inferred mean wait).
type BatteryOptions struct {
	BinWidth float64
	MeanWait float64
	Verbose  bool
}

// BatteryService runs the full conformance battery over zone catalogs and
// combines the per-zone p-values per test with Fisher's method. Zones run
// concurrently; every test call is a pure function, so no coordination
// beyond result collection is needed.
type BatteryService struct {
	ledger ports.ResultLedger // optional; nil disables persistence
	logger *internal.Logger
}

// NewBatteryService creates a battery service. A nil ledger is valid and
// simply skips persistence.
func NewBatteryService(ledger ports.ResultLedger) *BatteryService {
	return &BatteryService{
		ledger: ledger,
		logger: internal.DefaultLogger,
	}
}

// Run executes the battery on every zone and returns the aggregate report.
// A test that cannot run on a zone (insufficient data, empty window) is
// recorded as skipped for that zone rather than failing the run; the run
// itself fails only on context cancellation or a ledger error.
func (s *BatteryService) Run(ctx context.Context, zones []ZoneCatalog, opts BatteryOptions) (*report.BatteryReport, error) {
	started := time.Now()

	results := make([]report.ZoneResult, len(zones))
	g, ctx := errgroup.WithContext(ctx)
	for i, zone := range zones {
		i, zone := i, zone
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.runZone(zone, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := &report.BatteryReport{
		ID:        core.ReportID(core.NewID()),
		CreatedAt: started.UTC(),
		Zones:     results,
		Combined:  make(map[conformance.TestName]conformance.CombinedResult),
	}
	for _, test := range []conformance.TestName{
		conformance.TestDispersion,
		conformance.TestBrownZhao,
		conformance.TestExponentialWait,
		conformance.TestUniformOrder,
	} {
		ps := r.PValues(test)
		if len(ps) == 0 {
			continue
		}
		combined, err := conformance.Fisher(ps)
		if err != nil {
			return nil, err
		}
		r.Combined[test] = combined
	}
	r.RuntimeMs = time.Since(started).Milliseconds()

	if s.ledger != nil {
		if err := s.ledger.SaveReport(ctx, r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// runZone executes the four tests on one zone catalog.
func (s *BatteryService) runZone(zone ZoneCatalog, opts BatteryOptions) report.ZoneResult {
	zr := report.ZoneResult{
		Zone:    zone.Zone,
		Summary: catalog.Summarize(zone.Catalog, zone.Window),
	}

	binOpts := conformance.BinOptions{Width: opts.BinWidth, Verbose: opts.Verbose}
	ksOpts := conformance.KSOptions{MeanWait: opts.MeanWait, Verbose: opts.Verbose}

	record := func(test conformance.TestName, res conformance.TestResult, err error) {
		if err != nil {
			if zr.Skipped == nil {
				zr.Skipped = make(map[conformance.TestName]string)
			}
			zr.Skipped[test] = err.Error()
			s.logger.Debug("[battery] zone %s: %s skipped: %v", zone.Zone, test, err)
			return
		}
		zr.Results = append(zr.Results, res)
	}

	res, err := conformance.Dispersion(zone.Catalog, zone.Window, binOpts)
	record(conformance.TestDispersion, res, err)

	res, err = conformance.BrownZhao(zone.Catalog, zone.Window, binOpts)
	record(conformance.TestBrownZhao, res, err)

	res, err = conformance.ExponentialWait(zone.Catalog, zone.Window, ksOpts)
	record(conformance.TestExponentialWait, res, err)

	res, err = conformance.UniformOrder(zone.Catalog, zone.Window, ksOpts)
	record(conformance.TestUniformOrder, res, err)

	return zr
}
