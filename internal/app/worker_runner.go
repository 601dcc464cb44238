package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/dig"

	"github.com/primosamu/cannoli-dispatch/internal/config"
	"github.com/primosamu/cannoli-dispatch/internal/logx"
	"github.com/primosamu/cannoli-dispatch/internal/service/intake"
	"github.com/primosamu/cannoli-dispatch/internal/transport/kafka"
)

var newKafkaConsumer = kafka.NewConsumer

// WorkerRunner runs the Kafka intake consumer
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun starts the consumer using the provided DI container
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, logger logx.Logger, svc *intake.Service) (*kafka.Consumer, error) {
			if cfg.Store == config.StoreMemory {
				return nil, errors.New("worker needs a shared store: STORE=memory is not supported")
			}
			return newKafkaConsumer(
				logger,
				cfg.Kafka.Brokers,
				cfg.Kafka.GroupID,
				cfg.Kafka.IntakeTopic,
				makeIntakeKafka(svc),
			)
		},
	)
}

type workerDeps struct {
	dig.In

	Ctx      context.Context
	Logger   logx.Logger
	Consumer *kafka.Consumer
	Pipeline *pipeline   `optional:"true"`
	Close    storeCloser `optional:"true"`
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(d workerDeps) error {
	if d.Consumer == nil {
		return errors.New("kafka consumer is nil: set KAFKA_BROKERS and KAFKA_INTAKE_TOPIC")
	}
	defer closeWorker(d)

	d.Logger.Info("dispatch-worker started")
	return d.Consumer.Run(d.Ctx)
}

func closeWorker(d workerDeps) {
	if err := d.Consumer.Close(); err != nil {
		d.Logger.Error("kafka close error", logx.Err(err))
	}
	if d.Pipeline != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.Pipeline.Close(ctx); err != nil {
			d.Logger.Error("notification pipeline close error", logx.Err(err))
		}
	}
	if d.Close != nil {
		d.Close()
	}
}
