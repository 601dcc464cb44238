package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"github.com/primosamu/cannoli-dispatch/internal/config"
	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/http/handlers"
	obs "github.com/primosamu/cannoli-dispatch/internal/http/middleware"
	"github.com/primosamu/cannoli-dispatch/internal/http/middleware/ratelimit"
	"github.com/primosamu/cannoli-dispatch/internal/http/pprofserver"
	"github.com/primosamu/cannoli-dispatch/internal/http/router"
	"github.com/primosamu/cannoli-dispatch/internal/logx"
	"github.com/primosamu/cannoli-dispatch/internal/monitor"
	"github.com/primosamu/cannoli-dispatch/internal/notify"
	"github.com/primosamu/cannoli-dispatch/internal/service/courier"
	"github.com/primosamu/cannoli-dispatch/internal/service/delivery"
	"github.com/primosamu/cannoli-dispatch/internal/service/intake"
	"github.com/primosamu/cannoli-dispatch/internal/service/query"
	"github.com/primosamu/cannoli-dispatch/internal/service/transition"
)

// operationTimeout bounds a single store operation.
type operationTimeout time.Duration

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	service   string
	loadCfg   func() (*config.Config, error)
	dbConnect dbConnectFunc
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		service:   "dispatch-api",
		loadCfg:   config.Load,
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithConfig replaces config loading with a fixed config.
func (b *ContainerBuilder) WithConfig(cfg *config.Config) *ContainerBuilder {
	if cfg != nil {
		b.loadCfg = func() (*config.Config, error) { return cfg, nil }
	}
	return b
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds the API container: HTTP surface plus the stale-order monitor.
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx, registerHTTP, registerMonitor)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// MustBuildWorker builds the worker container: the Kafka intake consumer.
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	b.service = "dispatch-worker"
	container, err := b.build(ctx, registerWorker)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context, extra ...func(*dig.Container) error) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.service, b.loadCfg); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerMetrics(container); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if err := registerStore(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if err := registerDomainServices(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	for _, register := range extra {
		if err := register(container); err != nil {
			return nil, err
		}
	}
	return container, nil
}

// MustBuildContainer builds and returns the API container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds and returns the worker container
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context, service string, loadCfg func() (*config.Config, error)) error {
	return provideAll(container,
		func() context.Context { return ctx },
		loadCfg,
		func(cfg *config.Config) (logx.Logger, error) { return NewLogger(service, cfg.LogLevel) },
		func(cfg *config.Config) operationTimeout { return operationTimeout(cfg.OperationTimeout) },
	)
}

func registerMetrics(container *dig.Container) error {
	return provideAll(container,
		newRegistry,
		func(r *prometheus.Registry) prometheus.Registerer { return r },
		func(r *prometheus.Registry) prometheus.Gatherer { return r },
		provideMetrics,
	)
}

func registerStore(container *dig.Container, connect dbConnectFunc) error {
	return provideAll(container,
		func(ctx context.Context, cfg *config.Config, logger logx.Logger) (Store, storeCloser, error) {
			return newStore(ctx, cfg, logger, connect)
		},
	)
}

type deliveryIn struct {
	dig.In

	Store       Store
	Couriers    *courier.Service
	Dispatcher  notify.Dispatcher
	Config      *config.Config
	Timeout     operationTimeout
	Logger      logx.Logger
	Assignments *prometheus.CounterVec `name:"delivery_assignments_total"`
}

type engineIn struct {
	dig.In

	Store       Store
	Couriers    *courier.Service
	Dispatcher  notify.Dispatcher
	Timeout     operationTimeout
	Logger      logx.Logger
	Transitions *prometheus.CounterVec `name:"order_transitions_total"`
}

type intakeIn struct {
	dig.In

	Store      Store
	Deliveries *delivery.Service
	Dispatcher notify.Dispatcher
	Timeout    operationTimeout
	Logger     logx.Logger
	Accepted   *prometheus.CounterVec `name:"orders_intake_total"`
}

func newPolicy(cfg *config.Config) delivery.Policy {
	return delivery.DefaultPolicy(delivery.FeeSchedule{
		Own:         domain.MoneyFromFloat(cfg.Policy.OwnFee),
		ThirdParty:  domain.MoneyFromFloat(cfg.Policy.ThirdPartyFee),
		Marketplace: domain.MoneyFromFloat(cfg.Policy.MarketplaceFee),
	}, cfg.Policy.ETA)
}

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		newPipeline,
		func(p *pipeline) notify.Dispatcher { return p.front },
		func(s Store, timeout operationTimeout, logger logx.Logger) *courier.Service {
			return courier.NewService(s, time.Duration(timeout), logger)
		},
		func(in deliveryIn) *delivery.Service {
			return delivery.NewService(in.Store, in.Couriers, newPolicy(in.Config), in.Dispatcher,
				time.Duration(in.Timeout), in.Logger, delivery.WithAssignmentsCounter(in.Assignments))
		},
		func(in engineIn) *transition.Engine {
			return transition.NewEngine(in.Store, in.Couriers, in.Dispatcher, in.Transitions,
				time.Duration(in.Timeout), in.Logger)
		},
		func(in intakeIn) *intake.Service {
			return intake.NewService(in.Store, in.Deliveries, in.Dispatcher, in.Accepted,
				time.Duration(in.Timeout), in.Logger)
		},
		func(s Store, timeout operationTimeout) *query.Service {
			return query.NewService(s, time.Duration(timeout))
		},
	)
}

type routerIn struct {
	dig.In

	Logger    logx.Logger
	Base      *handlers.Handlers
	Orders    *handlers.OrderHandler
	Couriers  *handlers.CourierHandler
	RateLimit *ratelimit.Middleware
	HTTP      obs.HTTPMetrics
	Gatherer  prometheus.Gatherer
}

func newRouter(in routerIn) http.Handler {
	return router.New(in.Base, in.Orders, in.Couriers, router.Options{
		Logger:    in.Logger,
		Metrics:   &in.HTTP,
		RateLimit: in.RateLimit,
		Gatherer:  in.Gatherer,
	})
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		func(
			logger logx.Logger,
			q *query.Service,
			e *transition.Engine,
			d *delivery.Service,
			i *intake.Service,
		) *handlers.OrderHandler {
			return handlers.NewOrderHandler(logger, q, e, d, i)
		},
		func(logger logx.Logger, c *courier.Service) *handlers.CourierHandler {
			return handlers.NewCourierHandler(logger, c)
		},
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		newRouter,
		serverProvider,
		func(cfg *config.Config, logger logx.Logger) *pprofserver.Server {
			return pprofserver.New(cfg.Pprof, logger)
		},
	)
}

type monitorIn struct {
	dig.In

	Store   Store
	Config  *config.Config
	Timeout operationTimeout
	Logger  logx.Logger
	Gauge   *prometheus.GaugeVec `name:"orders_stale"`
}

func registerMonitor(container *dig.Container) error {
	return provideAll(container,
		func(in monitorIn) *monitor.StaleOrders {
			return monitor.NewStaleOrders(in.Store, in.Config.Monitor.StaleAfter,
				time.Duration(in.Timeout), in.Gauge, in.Logger)
		},
	)
}
