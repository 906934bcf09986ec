// Package bootstrap builds the ApplicationService from configuration.
// It is shared by the server and the terminal binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"commerce-engine/internal/app"
	"commerce-engine/internal/config"
	"commerce-engine/internal/core"
	"commerce-engine/internal/db"
	"commerce-engine/internal/export"
	"commerce-engine/internal/store"
)

// Runtime is a wired service plus the resources to release on shutdown.
type Runtime struct {
	Service app.ApplicationService
	closers []func()
}

// Close releases connections and files in reverse order of acquisition.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

// Build connects the configured order store, ticket counter and receipt sinks.
func Build(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{}
	fail := func(err error) (*Runtime, error) {
		rt.Close()
		return nil, err
	}

	orders, err := buildStore(ctx, cfg, rt)
	if err != nil {
		return fail(err)
	}
	counters, err := buildCounters(ctx, cfg, rt)
	if err != nil {
		return fail(err)
	}
	head := export.Letterhead{StoreName: cfg.StoreName, Currency: cfg.Currency}
	sink, err := buildSink(cfg, head, rt)
	if err != nil {
		return fail(err)
	}

	rt.Service = app.NewAppService(orders, counters, sink, head, app.LogAudit{})
	return rt, nil
}

func buildStore(ctx context.Context, cfg *config.Config, rt *Runtime) (store.OrderStore, error) {
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		log.Printf("order store: postgres")
		return store.NewPostgresStore(pool), nil
	case "http":
		log.Printf("order store: %s", cfg.StoreURL)
		return store.NewHTTPStore(cfg.StoreURL, cfg.StoreTimeout), nil
	default:
		log.Printf("order store: in-memory (orders are lost on restart)")
		return store.NewMemoryStore(), nil
	}
}

func buildCounters(ctx context.Context, cfg *config.Config, rt *Runtime) (app.CounterFactory, error) {
	if cfg.TicketCounter != "redis" {
		return app.MemoryCounters(cfg.TicketSeed), nil
	}
	client, err := db.NewRedis(ctx, cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		return nil, fmt.Errorf("ticket counter: %w", err)
	}
	rt.closers = append(rt.closers, func() { _ = client.Close() })
	log.Printf("ticket counter: redis %s", cfg.RedisURL)
	return func(ctx context.Context, terminalID string) (core.TicketCounter, error) {
		c, err := store.NewRedisCounter(ctx, client, terminalID, cfg.TicketSeed)
		if err != nil {
			return nil, err
		}
		return c, nil
	}, nil
}

func buildSink(cfg *config.Config, head export.Letterhead, rt *Runtime) (export.Sink, error) {
	var sinks []export.Sink

	if cfg.PrinterType != "none" {
		p, err := export.NewPrinter(cfg.PrinterType, cfg.PrinterUSBPath, cfg.PrinterAddress)
		if err != nil {
			return nil, fmt.Errorf("printer: %w", err)
		}
		if !p.IsConnected() {
			log.Printf("printer: %s not reachable at startup", cfg.PrinterType)
		}
		sinks = append(sinks, export.NewThermalSink(p, head))
	}

	if cfg.ReceiptDir != "" {
		pdf, err := export.NewPDFSink(cfg.ReceiptDir, head)
		if err != nil {
			return nil, fmt.Errorf("receipt dir: %w", err)
		}
		sinks = append(sinks, pdf)

		path := filepath.Join(cfg.ReceiptDir, "receipts.csv")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("receipt csv: %w", err)
		}
		rt.closers = append(rt.closers, func() { _ = f.Close() })
		csvSink := export.NewCSVSink(f)
		if info, err := f.Stat(); err == nil && info.Size() > 0 {
			csvSink.SkipHeader()
		}
		sinks = append(sinks, csvSink)
	}

	if len(sinks) == 0 {
		return nil, nil
	}
	return export.NewFanout(sinks...), nil
}
