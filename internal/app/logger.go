package app

import (
	"os"

	"github.com/primosamu/cannoli-dispatch/internal/logx"
)

// NewLogger returns the stdout JSON logger tagged with the process name.
func NewLogger(service, level string) (logx.Logger, error) {
	lvl, err := logx.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logx.NewJSON(os.Stdout, lvl).With(logx.String("service", service)), nil
}
