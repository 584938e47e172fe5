package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/dexledger/config"
	"github.com/alejandrodnm/dexledger/internal/adapters/bitquery"
	"github.com/alejandrodnm/dexledger/internal/adapters/export"
	"github.com/alejandrodnm/dexledger/internal/adapters/notify"
	"github.com/alejandrodnm/dexledger/internal/adapters/storage"
	"github.com/alejandrodnm/dexledger/internal/application/engine"
	"github.com/alejandrodnm/dexledger/internal/ports"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run ejecuta el CLI y devuelve el exit code. Los defers (store.Close) corren
// antes de que main llame a os.Exit.
func run(args []string) int {
	fs := flag.NewFlagSet("dexledger", flag.ContinueOnError)
	configPath := fs.String("config", "config/config.yaml", "path to config file")
	verbose := fs.Bool("verbose", false, "set log level to debug")
	logFormat := fs.String("format", "", "log format: text|json (overrides config)")
	refresh := fs.Bool("refresh", false, "ignore cached snapshot and re-fetch trades")
	noStore := fs.Bool("no-store", false, "do not persist the run in SQLite")
	quiet := fs.Bool("quiet", false, "print only the one-line run summary")
	listRuns := fs.Bool("runs", false, "list stored runs and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		return 1
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *refresh {
		cfg.Source.Refresh = true
	}
	setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	console := notify.NewConsole(*quiet)

	// Storage opcional: DSN vacío o -no-store desactivan la persistencia.
	var store ports.Storage
	if cfg.Storage.DSN != "" && !*noStore {
		s, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			return 1
		}
		defer s.Close()
		store = s
	}

	if *listRuns {
		if store == nil {
			slog.Error("-runs needs storage.dsn and no -no-store")
			return 1
		}
		runs, err := store.GetRuns(ctx)
		if err != nil {
			slog.Error("failed to list runs", "err", err)
			return 1
		}
		if err := console.PrintRuns(runs); err != nil {
			slog.Error("failed to print runs", "err", err)
			return 1
		}
		return 0
	}

	slog.Info("dexledger starting",
		"config", *configPath,
		"network", cfg.Source.Network,
		"pool", cfg.Source.Pool,
		"bar_threshold", cfg.Analysis.BarThreshold,
		"refresh", cfg.Source.Refresh,
		"store", store != nil,
	)

	client := bitquery.NewClient(cfg.Source.Endpoint, cfg.Source.APIKey)
	source := bitquery.NewSource(client, bitquery.QueryVariables{
		Network: cfg.Source.Network,
		Limit:   cfg.Source.Limit,
		Offset:  cfg.Source.Offset,
		Token:   cfg.Source.Token,
		Pool:    cfg.Source.Pool,
	}, cfg.Source.CacheDir, cfg.Source.Refresh)

	exporters := buildExporters(cfg.Export)

	eng := engine.New(engine.Config{
		Network:       cfg.Source.Network,
		Token:         cfg.Source.Token,
		Pool:          cfg.Source.Pool,
		BarThreshold:  cfg.Analysis.BarThreshold,
		Criteria:      cfg.Criteria(),
		SkipMalformed: cfg.Analysis.SkipMalformed,
	}, source, exporters, store, console)

	if _, err := eng.Run(ctx); err != nil {
		slog.Error("run failed", "err", err)
		return 1
	}
	return 0
}

// buildExporters crea un writer por formato configurado.
func buildExporters(cfg config.ExportConfig) []ports.AnalysisExporter {
	var out []ports.AnalysisExporter
	for _, f := range cfg.Formats {
		switch f {
		case "csv":
			out = append(out, export.NewCSVWriter(cfg.Dir))
		case "json":
			out = append(out, export.NewJSONWriter(cfg.Dir))
		}
	}
	return out
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
