package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink publishes events to a fanout exchange and waits for the publisher confirm.
type AMQPSink struct {
	conn     *amqp.Connection
	ch       amqpChannel
	closeCh  func() error
	acks     <-chan amqp.Confirmation
	exchange string
	mu       sync.Mutex // confirms are matched in publish order
}

// DialAMQP connects, declares the exchange and enables publisher confirms.
func DialAMQP(url, exchange string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp declare %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp confirm mode: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	s := newAMQPSink(ch, acks, exchange)
	s.conn = conn
	s.closeCh = ch.Close
	return s, nil
}

func newAMQPSink(ch amqpChannel, acks <-chan amqp.Confirmation, exchange string) *AMQPSink {
	return &AMQPSink{ch: ch, acks: acks, exchange: exchange}
}

// Dispatch publishes the event as a persistent message.
func (s *AMQPSink) Dispatch(ctx context.Context, e Event) error {
	body, err := encode(e)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.ch.PublishWithContext(ctx, s.exchange, string(e.Kind), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    e.ID,
		Timestamp:    time.Now().UTC(),
		Type:         string(e.Kind),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("amqp publish %s: %w", e.Kind, err)
	}

	select {
	case conf, ok := <-s.acks:
		if !ok {
			return errors.New("amqp channel closed before confirm")
		}
		if !conf.Ack {
			return errors.New("publish NACK from broker")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the channel and the connection.
func (s *AMQPSink) Close() error {
	var errs []error
	if s.closeCh != nil {
		errs = append(errs, s.closeCh())
	}
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
	}
	return errors.Join(errs...)
}
