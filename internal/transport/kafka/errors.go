package kafka

import "errors"

// rejected means the intake was refused for good: redelivery won't change the answer.
type rejected struct{ cause error }

func (r rejected) Error() string { return "intake rejected: " + r.cause.Error() }
func (r rejected) Unwrap() error { return r.cause }

// Permanent tells the consumer to mark the message and move on. Nil stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return rejected{cause: err}
}

// IsPermanent reports whether err (or anything it wraps) came from Permanent.
func IsPermanent(err error) bool {
	var r rejected
	return errors.As(err, &r)
}
