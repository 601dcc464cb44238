//go:build integration

package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/primosamu/cannoli-dispatch/internal/app"
	"github.com/primosamu/cannoli-dispatch/internal/config"
	"github.com/primosamu/cannoli-dispatch/internal/service/courier"
)

func TestMustBuildContainer_Postgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("dispatch"),
		postgres.WithUsername("dispatch"),
		postgres.WithPassword("dispatch"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.Config{
		Port:             8080,
		Store:            config.StorePostgres,
		OperationTimeout: 3 * time.Second,
		DB: config.DB{
			Host: host,
			Port: port.Port(),
			User: "dispatch",
			Pass: "dispatch",
			Name: "dispatch",
		},
		Notify:    config.DefaultNotify(),
		Monitor:   config.DefaultMonitor(),
		Policy:    config.DefaultPolicy(),
		RateLimit: config.DefaultRateLimit(),
	}

	c := app.NewContainerBuilder().WithConfig(cfg).MustBuild(ctx)

	err = c.Invoke(func(svc *courier.Service) {
		created, err := svc.AddCourier(ctx, "Ana", "+5511999990000")
		require.NoError(t, err)

		got, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, "Ana", got.Name)
	})
	require.NoError(t, err)
}
