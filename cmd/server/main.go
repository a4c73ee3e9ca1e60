package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"pmr-generator/internal/api"
	"pmr-generator/internal/config"
	"pmr-generator/internal/report"
	"pmr-generator/internal/session"
	"pmr-generator/internal/source"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	store := session.NewStore(time.Duration(cfg.Session.TTLMinutes) * time.Minute)
	store.StartSweeper()

	runner := report.NewRunner(cfg.Report.ChartWidth, cfg.Report.ChartHeight, 30*time.Minute)
	runner.StartSweeper()

	fetcher := source.NewSheetFetcher(time.Duration(cfg.Source.FetchTimeoutSeconds) * time.Second)

	log.Printf("[Main] session TTL %dm, fetch timeout %ds", cfg.Session.TTLMinutes, cfg.Source.FetchTimeoutSeconds)

	r := api.SetupRouter(cfg, store, fetcher, runner)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Starting server on %s%s\n", addr, cfg.Server.Subpath)
	if err := r.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
