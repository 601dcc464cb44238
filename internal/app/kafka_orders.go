package app

import (
	"context"
	"errors"

	"github.com/primosamu/cannoli-dispatch/internal/apperr"
	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/service/intake"
	"github.com/primosamu/cannoli-dispatch/internal/transport/kafka"
)

type orderIntaker interface {
	Intake(ctx context.Context, in intake.NewOrder) (domain.Order, error)
}

// makeIntakeKafka adapts the intake service to the consumer. Business rejections are permanent;
// a Conflict means the external id was already taken in, so the message is acknowledged.
func makeIntakeKafka(svc orderIntaker) kafka.HandleFunc {
	return func(ctx context.Context, in intake.NewOrder) error {
		_, err := svc.Intake(ctx, in)
		switch {
		case err == nil, errors.Is(err, apperr.ErrConflict):
			return nil
		case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrCourierUnavailable):
			return kafka.Permanent(err)
		default:
			return err
		}
	}
}
