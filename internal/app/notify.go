package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"github.com/primosamu/cannoli-dispatch/internal/config"
	"github.com/primosamu/cannoli-dispatch/internal/logx"
	"github.com/primosamu/cannoli-dispatch/internal/notify"
)

var (
	newKafkaProducer = notify.NewSyncProducer
	connectNATS      = notify.ConnectNATS
	dialAMQP         = notify.DialAMQP
)

// pipeline is the dispatcher handed to the services. Every sink gets its own queue
// and retry loop, so a sink that keeps failing only backs up its own lane.
type pipeline struct {
	front   notify.Dispatcher
	lanes   []*notify.Async
	closers []func() error
}

// Close drains every lane, then closes the sink connections.
func (p *pipeline) Close(ctx context.Context) error {
	var errs []error
	for _, l := range p.lanes {
		errs = append(errs, l.Close(ctx))
	}
	for i := len(p.closers) - 1; i >= 0; i-- {
		errs = append(errs, p.closers[i]())
	}
	return errors.Join(errs...)
}

type pipelineIn struct {
	dig.In

	Config     *config.Config
	Logger     logx.Logger
	Retries    prometheus.Counter     `name:"notify_retries_total"`
	Dropped    prometheus.Counter     `name:"notifications_dropped_total"`
	Dispatched *prometheus.CounterVec `name:"notifications_dispatched_total"`
}

func newPipeline(in pipelineIn) (*pipeline, error) {
	cfg := in.Config
	logger := in.Logger.With(logx.String("component", "notify"))

	p := &pipeline{}
	closeOnErr := func(err error) (*pipeline, error) {
		for _, c := range p.closers {
			_ = c()
		}
		return nil, err
	}

	retry := notify.RetryConfig{
		MaxAttempts: cfg.Notify.MaxAttempts,
		BaseDelay:   cfg.Notify.BaseDelay,
		MaxDelay:    cfg.Notify.MaxDelay,
	}
	var sinks []notify.Sink
	add := func(name string, d notify.Dispatcher) {
		sinks = append(sinks, notify.Sink{
			Name:       name,
			Dispatcher: notify.NewRetrying(d, name, logger, in.Retries, retry),
		})
	}

	for _, name := range cfg.Notify.Sinks {
		switch name {
		case config.SinkLog:
			add(name, notify.NewLogSink(logger))
		case config.SinkKafka:
			producer, err := newKafkaProducer(cfg.Kafka.Brokers)
			if err != nil {
				return closeOnErr(fmt.Errorf("kafka producer: %w", err))
			}
			sink := notify.NewKafkaSink(producer, cfg.Kafka.NotifyTopic)
			p.closers = append(p.closers, sink.Close)
			add(name, sink)
		case config.SinkNATS:
			conn, err := connectNATS(cfg.NATS.URL)
			if err != nil {
				return closeOnErr(err)
			}
			p.closers = append(p.closers, conn.Drain)
			add(name, notify.NewNATSSink(conn, cfg.NATS.SubjectPrefix))
		case config.SinkAMQP:
			sink, err := dialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
			if err != nil {
				return closeOnErr(err)
			}
			p.closers = append(p.closers, sink.Close)
			add(name, sink)
		default:
			return closeOnErr(fmt.Errorf("unknown notification sink %q", name))
		}
	}

	p.front, p.lanes = newLanes(sinks, cfg.Notify.Buffer, logger, in.Dropped, in.Dispatched)
	logger.Info("notification pipeline ready", logx.Any("sinks", cfg.Notify.Sinks))
	return p, nil
}

// newLanes puts an async queue in front of each sink and returns a fan-out over the queues.
// Enqueueing never fails, so delivery results are counted inside each lane.
func newLanes(
	sinks []notify.Sink,
	buffer int,
	logger logx.Logger,
	dropped prometheus.Counter,
	dispatched *prometheus.CounterVec,
) (notify.Dispatcher, []*notify.Async) {
	lanes := make([]*notify.Async, 0, len(sinks))
	front := make([]notify.Sink, 0, len(sinks))
	for _, s := range sinks {
		lane := notify.NewAsync(
			notify.NewFanout(dispatched, s),
			buffer,
			0,
			logger.With(logx.String("sink", s.Name)),
			dropped,
		)
		lanes = append(lanes, lane)
		front = append(front, notify.Sink{Name: s.Name, Dispatcher: lane})
	}
	return notify.NewFanout(nil, front...), lanes
}
