package config

import "time"

const (
	defaultPort             = 8080
	defaultStore            = StorePostgres
	defaultOperationTimeout = 3 * time.Second
)

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "test_db",
}

var defaultNotify = Notify{
	Sinks:       []string{SinkLog},
	Buffer:      256,
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

var defaultKafka = Kafka{
	NotifyTopic: "order-notifications",
	IntakeTopic: "order-intake",
	GroupID:     "dispatch-worker",
}

var defaultMonitor = Monitor{
	Schedule:   "@every 1m",
	StaleAfter: 45 * time.Minute,
}

var defaultPolicy = Policy{
	OwnFee:         7.00,
	ThirdPartyFee:  12.00,
	MarketplaceFee: 6.99,
	ETA:            45 * time.Minute,
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       20,
	Burst:      40,
	WriteRate:  5,
	WriteBurst: 10,
	TTL:        5 * time.Minute,
	MaxBuckets: 10000,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultNotify returns the default notification settings.
func DefaultNotify() Notify {
	n := defaultNotify
	n.Sinks = append([]string(nil), defaultNotify.Sinks...)
	return n
}

// DefaultKafka returns the default Kafka settings.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultMonitor returns the default stale-order monitor settings.
func DefaultMonitor() Monitor {
	return defaultMonitor
}

// DefaultPolicy returns the default delivery policy settings.
func DefaultPolicy() Policy {
	return defaultPolicy
}

// DefaultRateLimit returns the default rate limiter settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}

// DefaultPprof returns the default pprof server settings.
func DefaultPprof() Pprof {
	return Pprof{Addr: "127.0.0.1:6060"}
}
