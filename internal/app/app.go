// Package app assembles the server: telemetry, contract store, audit
// archive, engine, and the HTTP listener. New wires the subsystems, Run
// executes the listener until the context ends, and Shutdown tears
// everything down in reverse order.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/indiandesillm/inference-core/internal/audit"
	"github.com/indiandesillm/inference-core/internal/config"
	"github.com/indiandesillm/inference-core/internal/contract"
	"github.com/indiandesillm/inference-core/internal/engine"
	"github.com/indiandesillm/inference-core/internal/health"
	"github.com/indiandesillm/inference-core/internal/httpapi"
	"github.com/indiandesillm/inference-core/internal/observe"
)

// readHeaderTimeout bounds slow-header clients on the listener. Transport
// timeouts live here, never inside the pipeline.
const readHeaderTimeout = 10 * time.Second

// App owns every long-lived subsystem of the server.
type App struct {
	cfg *config.Config
	log *slog.Logger

	engine  *engine.Engine
	metrics *observe.Metrics
	server  *http.Server

	auditStore  *audit.Store
	auditWriter *audit.Writer

	otelShutdown func(context.Context) error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
	stopErr  error
}

// New wires all subsystems from cfg. A contract load failure is fatal only
// when cfg.Contract.Require is set; otherwise the engine starts in absolute
// fallback mode. An unreachable audit database disables archiving with a
// warning rather than failing startup.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "inference-core",
		ServiceVersion: httpapi.EngineVersion,
	})
	if err != nil {
		return nil, err
	}
	a.otelShutdown = otelShutdown
	a.metrics = observe.DefaultMetrics()

	var store *contract.Store
	if cfg.Contract.Path != "" {
		store, err = contract.Load(cfg.Contract.Path, cfg.Contract.Version)
		if err != nil {
			if cfg.Contract.Require {
				_ = a.Shutdown(ctx)
				return nil, err
			}
			log.Error("contract load failed, serving absolute fallbacks", "error", err)
			store = nil
		} else {
			log.Info("contract loaded",
				"path", cfg.Contract.Path,
				"version", store.Version(),
				"fingerprint", store.Fingerprint())
		}
	}

	var sink engine.AuditSink
	if cfg.Audit.PostgresDSN != "" {
		a.auditStore, err = audit.NewStore(ctx, cfg.Audit.PostgresDSN)
		if err != nil {
			log.Warn("audit archive unavailable, archiving disabled", "error", err)
			a.auditStore = nil
		} else {
			a.auditWriter = audit.NewWriter(a.auditStore, log, cfg.Audit.QueueDepth)
			a.auditWriter.Start(ctx)
			sink = a.auditWriter
		}
	}

	a.engine = engine.New(engine.Config{
		Logger:  log,
		Store:   store,
		Metrics: a.metrics,
		Audit:   sink,
	})

	checkers := []health.Checker{
		{
			Name: "contract",
			Check: func(context.Context) error {
				if !a.engine.ContractLoaded() && cfg.Contract.Require {
					return errors.New("contract not loaded")
				}
				return nil
			},
		},
	}
	if a.auditStore != nil {
		checkers = append(checkers, health.Checker{
			Name:  "audit",
			Check: a.auditStore.Ping,
		})
	}

	srv := httpapi.New(log, a.engine, health.New(checkers...))
	a.server = &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(a.metrics),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return a, nil
}

// Engine exposes the engine, mainly for tests.
func (a *App) Engine() *engine.Engine { return a.engine }

// Run serves HTTP until ctx is cancelled, then drains the listener.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if tls := a.cfg.Server.TLS; tls != nil {
			err = a.server.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = a.server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown tears down all subsystems in reverse-init order. Safe to call
// more than once.
func (a *App) Shutdown(ctx context.Context) error {
	a.stopOnce.Do(func() {
		var errs []error
		if a.server != nil {
			if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs = append(errs, err)
			}
		}
		if a.auditWriter != nil {
			if err := a.auditWriter.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if a.auditStore != nil {
			a.auditStore.Close()
		}
		if a.otelShutdown != nil {
			if err := a.otelShutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		a.stopErr = errors.Join(errs...)
	})
	return a.stopErr
}
