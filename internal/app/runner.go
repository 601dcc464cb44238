package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/dig"

	"github.com/primosamu/cannoli-dispatch/internal/config"
	"github.com/primosamu/cannoli-dispatch/internal/http/pprofserver"
	"github.com/primosamu/cannoli-dispatch/internal/logx"
	"github.com/primosamu/cannoli-dispatch/internal/monitor"
)

const shutdownTimeout = 15 * time.Second

// Runner runs the HTTP server
type Runner struct {
	runFn func(*dig.Container) error
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run}
}

// MustRun starts the HTTP server using the provided DI container
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	logger := logx.Nop()
	_ = container.Invoke(func(l logx.Logger) { logger = l })

	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("startup aborted: startup timeout exceeded")
	default:
		logger.Error("run error", logx.Err(err))
		panic(err)
	}
}

type apiDeps struct {
	dig.In

	Ctx      context.Context
	Config   *config.Config
	Logger   logx.Logger
	Server   *http.Server
	Pprof    *pprofserver.Server `optional:"true"`
	Monitor  *monitor.StaleOrders
	Pipeline *pipeline
	Close    storeCloser
}

func run(container *dig.Container) error {
	return container.Invoke(appRun)
}

func appRun(d apiDeps) error {
	if d.Config.Monitor.Schedule != "" {
		if err := d.Monitor.Start(d.Config.Monitor.Schedule); err != nil {
			return err
		}
	}
	d.Pprof.Start()
	startServer(d.Server, d.Logger)

	waitForShutdown(d.Ctx, d.Logger)

	gracefulShutdown(d.Server, d.Logger, shutdownTimeout)
	closeResources(d)
	return d.Ctx.Err()
}

func startServer(server *http.Server, logger logx.Logger) {
	go func() {
		logger.Info("dispatch-api listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen error", logx.Err(err))
		}
	}()
}

func waitForShutdown(ctx context.Context, logger logx.Logger) {
	<-ctx.Done()
	logger.Info("shutting down dispatch-api")
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
	}
}

// closeResources stops the producers first, then drains notifications, then releases the store.
func closeResources(d apiDeps) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	d.Monitor.Stop(ctx)
	if err := d.Pprof.Shutdown(ctx); err != nil {
		d.Logger.Error("pprof shutdown error", logx.Err(err))
	}
	if err := d.Pipeline.Close(ctx); err != nil {
		d.Logger.Error("notification pipeline close error", logx.Err(err))
	}
	d.Close()
}
