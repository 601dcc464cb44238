package notify

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

type natsPublisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes events on "<prefix>.<kind>".
type NATSSink struct {
	conn   natsPublisher
	prefix string
}

// NewNATSSink wraps an existing publisher.
func NewNATSSink(conn natsPublisher, prefix string) *NATSSink {
	return &NATSSink{conn: conn, prefix: prefix}
}

// ConnectNATS opens a connection that keeps reconnecting in the background.
func ConnectNATS(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("cannoli-dispatch"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

// Dispatch publishes the event.
func (s *NATSSink) Dispatch(_ context.Context, e Event) error {
	body, err := encode(e)
	if err != nil {
		return err
	}
	subject := string(e.Kind)
	if s.prefix != "" {
		subject = s.prefix + "." + subject
	}
	if err := s.conn.Publish(subject, body); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}
