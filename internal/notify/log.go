package notify

import (
	"context"

	"github.com/primosamu/cannoli-dispatch/internal/logx"
)

// LogSink writes every event to the logger.
type LogSink struct {
	logger logx.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger logx.Logger) *LogSink {
	if logger == nil {
		logger = logx.Nop()
	}
	return &LogSink{logger: logger}
}

// Dispatch logs the event.
func (s *LogSink) Dispatch(_ context.Context, e Event) error {
	fields := []logx.Field{
		logx.String("event_id", e.ID),
		logx.String("kind", string(e.Kind)),
		logx.String("message_key", e.MessageKey),
		logx.String("order_id", e.OrderID),
		logx.String("order_number", e.OrderNumber),
		logx.String("status", string(e.Status)),
	}
	if e.Delivery.Type != "" {
		fields = append(fields, logx.String("delivery_type", string(e.Delivery.Type)))
	}
	s.logger.Info("notification", fields...)
	return nil
}
