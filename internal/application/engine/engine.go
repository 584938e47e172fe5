package engine

// engine.go: orquesta una ejecución completa:
//   source → processor (registry nuevo) → exporters → storage → notifier
//
// Los exporters corren en paralelo; un fallo de export aborta el run.
// Storage y notifier son opcionales y sus errores sólo se loguean.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/dexledger/internal/application/processor"
	"github.com/alejandrodnm/dexledger/internal/domain"
	"github.com/alejandrodnm/dexledger/internal/ports"
	"golang.org/x/sync/errgroup"
)

// Config contiene los parámetros de una ejecución.
type Config struct {
	Network       string
	Token         string
	Pool          string
	BarThreshold  float64
	Criteria      domain.Criteria
	SkipMalformed bool
}

// Engine conecta los adapters con el core.
type Engine struct {
	cfg       Config
	source    ports.TradeSource
	exporters []ports.AnalysisExporter
	storage   ports.Storage // nil = no persistir
	notifier  ports.Notifier
}

// New crea un Engine con todas las dependencias inyectadas.
func New(
	cfg Config,
	source ports.TradeSource,
	exporters []ports.AnalysisExporter,
	storage ports.Storage,
	notifier ports.Notifier,
) *Engine {
	return &Engine{
		cfg:       cfg,
		source:    source,
		exporters: exporters,
		storage:   storage,
		notifier:  notifier,
	}
}

// Run ejecuta el pipeline una vez y devuelve el reporte presentado.
func (e *Engine) Run(ctx context.Context) (domain.RunReport, error) {
	start := time.Now()

	records, err := e.source.LoadTrades(ctx)
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("engine.Run: load trades: %w", err)
	}
	slog.Info("trades loaded", "records", len(records), "pool", e.cfg.Pool)

	reg := domain.NewRegistry()
	proc := processor.New(processor.Config{
		Pool:          e.cfg.Pool,
		BarThreshold:  e.cfg.BarThreshold,
		Criteria:      e.cfg.Criteria,
		SkipMalformed: e.cfg.SkipMalformed,
	})
	res, err := proc.Process(reg, records)
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("engine.Run: process: %w", err)
	}

	if err := e.export(ctx, res.Analysis); err != nil {
		return domain.RunReport{}, err
	}

	info := domain.RunInfo{
		Network:      e.cfg.Network,
		Token:        e.cfg.Token,
		Pool:         e.cfg.Pool,
		BarThreshold: e.cfg.BarThreshold,
		Trades:       res.Processed,
		Skipped:      res.Skipped,
		Accounts:     reg.Len(),
		StartedAt:    start,
	}

	if e.storage != nil {
		id, err := e.storage.SaveRun(ctx, info, res.Analysis)
		if err != nil {
			slog.Warn("storage error", "err", err)
		} else {
			info.ID = id
		}
	}

	report := domain.RunReport{
		Info:       info,
		Analysis:   res.Analysis,
		Accounts:   reg.Summaries(res.LastPrice),
		LastPrice:  res.LastPrice,
		PendingQty: res.PendingQty,
	}

	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, report); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	slog.Info("run complete",
		"run_id", info.ID,
		"trades", info.Trades,
		"skipped", info.Skipped,
		"accounts", info.Accounts,
		"dollar_bars", len(res.Analysis.DollarBars),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return report, nil
}

// export escribe el Analysis con todos los exporters en paralelo.
func (e *Engine) export(ctx context.Context, a domain.Analysis) error {
	if len(e.exporters) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, ex := range e.exporters {
		g.Go(func() error {
			return ex.Export(gctx, a)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("engine.Run: export: %w", err)
	}
	return nil
}
