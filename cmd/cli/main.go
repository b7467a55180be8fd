package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"poissonkit/adapters/excel"
	"poissonkit/adapters/postgres"
	"poissonkit/app"
	"poissonkit/domain/catalog"
	"poissonkit/domain/conformance"
	"poissonkit/domain/core"
	"poissonkit/internal/config"
	"poissonkit/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "poissonkit-cli",
		Short: "Poisson conformance testing for event catalogs",
	}

	rootCmd.AddCommand(
		newBinCmd(),
		newTestCmd(),
		newSweepCmd(),
		newFitCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type windowFlags struct {
	start  float64
	end    float64
	column string
}

func (f *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.start, "start", 0, "Observation window start (decimal years)")
	cmd.Flags().Float64Var(&f.end, "end", 0, "Observation window end (decimal years)")
	cmd.Flags().StringVar(&f.column, "column", "", "Timestamp column header (default from CATALOG_TIME_COLUMN)")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
}

func (f *windowFlags) window() catalog.Window {
	return catalog.Window{Start: f.start, End: f.end}
}

func loadCatalog(ctx context.Context, path, column string) (catalog.Catalog, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if column == "" {
		column = cfg.Data.TimeColumn
	}
	return excel.NewCatalogReader().Load(ctx, ports.CatalogRef{Path: path, TimeColumn: column})
}

func newBinCmd() *cobra.Command {
	var wf windowFlags
	var width float64

	cmd := &cobra.Command{
		Use:   "bin [catalog-file]",
		Short: "Bin an event catalog into a fixed-width count series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := loadCatalog(cmd.Context(), args[0], wf.column)
			if err != nil {
				return err
			}
			binning, err := catalog.Bin(events, wf.window(), width)
			if err != nil {
				return err
			}
			return printJSON(binning)
		},
	}

	wf.register(cmd)
	cmd.Flags().Float64Var(&width, "width", catalog.DefaultBinWidth, "Bin width in time units")
	return cmd
}

func newTestCmd() *cobra.Command {
	var wf windowFlags
	var width, meanWait float64
	var verbose bool

	cmd := &cobra.Command{
		Use:   "test [dispersion|brownzhao|expwait|uniform] [catalog-file]",
		Short: "Run one conformance test against a catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := loadCatalog(cmd.Context(), args[1], wf.column)
			if err != nil {
				return err
			}
			w := wf.window()
			binOpts := conformance.BinOptions{Width: width, Verbose: verbose}
			ksOpts := conformance.KSOptions{MeanWait: meanWait, Verbose: verbose}

			var result conformance.TestResult
			switch args[0] {
			case "dispersion":
				result, err = conformance.Dispersion(events, w, binOpts)
			case "brownzhao":
				result, err = conformance.BrownZhao(events, w, binOpts)
			case "expwait":
				result, err = conformance.ExponentialWait(events, w, ksOpts)
			case "uniform":
				result, err = conformance.UniformOrder(events, w, ksOpts)
			default:
				return fmt.Errorf("unknown test %q", args[0])
			}
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	wf.register(cmd)
	cmd.Flags().Float64Var(&width, "width", catalog.DefaultBinWidth, "Bin width for the binned tests")
	cmd.Flags().Float64Var(&meanWait, "mean-wait", 0, "A-priori mean wait for the exponential test (0 = infer)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Emit per-test diagnostics")
	return cmd
}

func newSweepCmd() *cobra.Command {
	var wf windowFlags
	var width, meanWait float64
	var verbose, store bool

	cmd := &cobra.Command{
		Use:   "sweep [catalog-file...]",
		Short: "Run the full battery across zone catalogs and combine p-values",
		Long: `Run the full battery across zone catalogs and combine p-values.

Each catalog file is treated as one spatial zone; per-test p-values are
combined across zones with Fisher's method.

Example: poissonkit-cli sweep --start 1960 --end 2015 zoneA.csv zoneB.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var ledger ports.ResultLedger
			if store {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				if err := cfg.RequireDatabase(); err != nil {
					return err
				}
				db, err := postgres.Connect(ctx, cfg.Database.URL)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := postgres.EnsureSchema(ctx, db); err != nil {
					return err
				}
				ledger = postgres.NewReportRepository(db)
			}

			zones := make([]app.ZoneCatalog, 0, len(args))
			for _, path := range args {
				events, err := loadCatalog(ctx, path, wf.column)
				if err != nil {
					return fmt.Errorf("loading %s: %w", path, err)
				}
				zones = append(zones, app.ZoneCatalog{
					Zone:    core.ZoneKey(path),
					Catalog: events,
					Window:  wf.window(),
				})
			}

			rep, err := app.NewBatteryService(ledger).Run(ctx, zones, app.BatteryOptions{
				BinWidth: width,
				MeanWait: meanWait,
				Verbose:  verbose,
			})
			if err != nil {
				return err
			}
			return printJSON(rep)
		},
	}

	wf.register(cmd)
	cmd.Flags().Float64Var(&width, "width", catalog.DefaultBinWidth, "Bin width for the binned tests")
	cmd.Flags().Float64Var(&meanWait, "mean-wait", 0, "A-priori mean wait (0 = infer per zone)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Emit per-test diagnostics")
	cmd.Flags().BoolVar(&store, "store", false, "Persist the report to the ledger (DATABASE_URL)")
	return cmd
}

func newFitCmd() *cobra.Command {
	var dist, column string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "fit [catalog-file]",
		Short: "Anderson-Darling fit of the inter-event gaps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := loadCatalog(cmd.Context(), args[0], column)
			if err != nil {
				return err
			}
			result, err := conformance.AndersonDarling(events.Gaps(), conformance.Distribution(dist), conformance.GoodnessOptions{
				Bracket: true,
				Verbose: verbose,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&dist, "dist", string(conformance.DistExponential), "Reference distribution (norm|expon|logistic|gumbel|extreme1)")
	cmd.Flags().StringVar(&column, "column", "", "Timestamp column header (default from CATALOG_TIME_COLUMN)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Emit diagnostics")
	return cmd
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
