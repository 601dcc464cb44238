package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primosamu/cannoli-dispatch/internal/config"
	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/logx"
	"github.com/primosamu/cannoli-dispatch/internal/ports/ordertx"
	"github.com/primosamu/cannoli-dispatch/internal/repository"
	"github.com/primosamu/cannoli-dispatch/internal/repository/memory"
)

// Store is the persistence surface shared by all services.
type Store interface {
	ordertx.Runner
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetCourier(ctx context.Context, id string) (domain.Courier, error)
	ListCouriers(ctx context.Context) ([]domain.Courier, error)
	CreateCourier(ctx context.Context, c domain.Courier) error
	ToggleAvailability(ctx context.Context, id string, now time.Time) (domain.Courier, error)
}

type pgStore struct {
	*repository.OrderRepo
	*repository.CourierRepo
}

type dbConnectFunc func(ctx context.Context, logger logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error)

// storeCloser releases the backend; it is a no-op for the memory store.
type storeCloser func()

func newStore(
	ctx context.Context,
	cfg *config.Config,
	logger logx.Logger,
	connect dbConnectFunc,
) (Store, storeCloser, error) {
	if cfg.Store == config.StoreMemory {
		logger.Info("using in-memory store")
		return memory.New(), func() {}, nil
	}

	pool, err := connect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return pgStore{
		OrderRepo:   repository.NewOrderRepo(pool),
		CourierRepo: repository.NewCourierRepo(pool),
	}, pool.Close, nil
}

var migrate = repository.Migrate
