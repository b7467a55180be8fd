package main

import (
	"context"
	"net/http"
	"os"

	"poissonkit/adapters/api"
	"poissonkit/adapters/postgres"
	"poissonkit/app"
	"poissonkit/internal"
	"poissonkit/internal/config"
	"poissonkit/ports"
)

func main() {
	logger := internal.DefaultLogger

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var ledger ports.ResultLedger
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("connecting to ledger: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			logger.Error("ensuring ledger schema: %v", err)
			os.Exit(1)
		}
		ledger = postgres.NewReportRepository(db)
		logger.Info("result ledger enabled")
	} else {
		logger.Warn("DATABASE_URL not set; reports will not be persisted")
	}

	server := api.NewServer(app.NewBatteryService(ledger), ledger)

	logger.Info("listening on %s", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, server); err != nil {
		logger.Error("server: %v", err)
		os.Exit(1)
	}
}
