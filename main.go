package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/radumihail/orbit/internal/config"
	"github.com/radumihail/orbit/internal/store"
	"github.com/radumihail/orbit/internal/tracker"
	"github.com/radumihail/orbit/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	listenAddr := flag.String("listen", "", "listen address (overrides config)")
	dbPath := flag.String("db", "", "database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if cfg.DBPath == "" {
		cfg.DBPath, err = store.DefaultDBPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "orbit",
	})

	s, err := store.New(cfg.DBPath)
	if err != nil {
		logger.Error("opening database", "err", err)
		os.Exit(1)
	}
	defer s.Close()

	tr := tracker.New(s, logger)
	if err := tr.EnsureSeedData(cfg.SeedDemoData); err != nil {
		logger.Error("seeding data", "err", err)
		os.Exit(1)
	}

	srv := web.NewServer(tr, logger)
	logger.Info("listening", "addr", cfg.ListenAddr, "db", cfg.DBPath)
	if err := srv.Run(cfg.ListenAddr); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
