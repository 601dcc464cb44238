package logx

import "time"

// Logger is what every component logs through. Fields are key/value pairs;
// the adapter keeps their types when it encodes them.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

type Field struct {
	Key   string
	Value any
}

func Any(key string, v any) Field                { return Field{key, v} }
func String(key, v string) Field                 { return Field{key, v} }
func Int(key string, v int) Field                { return Field{key, v} }
func Int64(key string, v int64) Field            { return Field{key, v} }
func Float64(key string, v float64) Field        { return Field{key, v} }
func Bool(key string, v bool) Field              { return Field{key, v} }
func Time(key string, v time.Time) Field         { return Field{key, v} }
func Duration(key string, v time.Duration) Field { return Field{key, v} }

// Err logs under "err"; nil becomes "".
func Err(err error) Field {
	if err == nil {
		return Field{"err", ""}
	}
	return Field{"err", err.Error()}
}
