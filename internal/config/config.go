package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/logx"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Notification sinks.
const (
	SinkLog   = "log"
	SinkKafka = "kafka"
	SinkNATS  = "nats"
	SinkAMQP  = "amqp"
)

// Config stores service settings.
type Config struct {
	Port             int
	Store            string
	LogLevel         string
	OperationTimeout time.Duration
	DB               DB
	Notify           Notify
	Kafka            Kafka
	NATS             NATS
	AMQP             AMQP
	Monitor          Monitor
	Policy           Policy
	RateLimit        RateLimit
	Pprof            Pprof
}

// DB stores PostgreSQL connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN returns a postgres:// connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Notify stores dispatcher settings.
type Notify struct {
	Sinks       []string
	Buffer      int
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Has reports whether the sink is enabled.
func (n Notify) Has(sink string) bool {
	for _, s := range n.Sinks {
		if s == sink {
			return true
		}
	}
	return false
}

// Kafka stores broker settings shared by the intake consumer and the notification sink.
type Kafka struct {
	Brokers     []string
	NotifyTopic string
	IntakeTopic string
	GroupID     string
}

// NATS stores NATS sink settings.
type NATS struct {
	URL           string
	SubjectPrefix string
}

// AMQP stores RabbitMQ sink settings.
type AMQP struct {
	URL      string
	Exchange string
}

// Monitor stores stale-order monitor settings.
type Monitor struct {
	Schedule   string
	StaleAfter time.Duration
}

// Policy stores the default delivery policy. Fees are in currency units.
type Policy struct {
	OwnFee         float64
	ThirdPartyFee  float64
	MarketplaceFee float64
	ETA            time.Duration
}

// RateLimit stores per-client limiter settings. Rate and Burst apply to reads,
// WriteRate and WriteBurst to mutating requests.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	WriteRate  float64
	WriteBurst int
	TTL        time.Duration
	MaxBuckets int
}

// Pprof stores pprof server settings. An empty Addr disables the server.
type Pprof struct {
	Addr string
	User string
	Pass string
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs is Load with explicit command-line arguments.
func LoadArgs(args []string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:             defaultPort,
		Store:            defaultStore,
		LogLevel:         "info",
		OperationTimeout: defaultOperationTimeout,
		DB:               DefaultDB(),
		Notify:           DefaultNotify(),
		Kafka:            DefaultKafka(),
		NATS:             NATS{SubjectPrefix: "orders"},
		AMQP:             AMQP{Exchange: "notifications_fanout"},
		Monitor:          DefaultMonitor(),
		Policy:           DefaultPolicy(),
		RateLimit:        DefaultRateLimit(),
		Pprof:            DefaultPprof(),
	}

	e := envReader{}
	e.integer("PORT", &cfg.Port)
	e.str("STORE", &cfg.Store)
	e.str("LOG_LEVEL", &cfg.LogLevel)
	e.duration("OPERATION_TIMEOUT", &cfg.OperationTimeout)

	e.str("POSTGRES_HOST", &cfg.DB.Host)
	e.str("POSTGRES_PORT", &cfg.DB.Port)
	e.str("POSTGRES_USER", &cfg.DB.User)
	e.str("POSTGRES_PASSWORD", &cfg.DB.Pass)
	e.str("POSTGRES_DB", &cfg.DB.Name)

	e.list("NOTIFY_SINKS", &cfg.Notify.Sinks)
	e.integer("NOTIFY_BUFFER", &cfg.Notify.Buffer)
	e.integer("NOTIFY_MAX_ATTEMPTS", &cfg.Notify.MaxAttempts)
	e.duration("NOTIFY_BASE_DELAY", &cfg.Notify.BaseDelay)
	e.duration("NOTIFY_MAX_DELAY", &cfg.Notify.MaxDelay)

	e.list("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	e.str("KAFKA_NOTIFY_TOPIC", &cfg.Kafka.NotifyTopic)
	e.str("KAFKA_INTAKE_TOPIC", &cfg.Kafka.IntakeTopic)
	e.str("KAFKA_GROUP_ID", &cfg.Kafka.GroupID)

	e.str("NATS_URL", &cfg.NATS.URL)
	e.str("NATS_SUBJECT_PREFIX", &cfg.NATS.SubjectPrefix)
	e.str("AMQP_URL", &cfg.AMQP.URL)
	e.str("AMQP_EXCHANGE", &cfg.AMQP.Exchange)

	e.str("MONITOR_SCHEDULE", &cfg.Monitor.Schedule)
	e.duration("MONITOR_STALE_AFTER", &cfg.Monitor.StaleAfter)

	e.decimal("POLICY_OWN_FEE", &cfg.Policy.OwnFee)
	e.decimal("POLICY_THIRDPARTY_FEE", &cfg.Policy.ThirdPartyFee)
	e.decimal("POLICY_MARKETPLACE_FEE", &cfg.Policy.MarketplaceFee)
	e.duration("POLICY_ETA", &cfg.Policy.ETA)

	e.boolean("RATE_LIMIT_ENABLED", &cfg.RateLimit.Enabled)
	e.decimal("RATE_LIMIT_RATE", &cfg.RateLimit.Rate)
	e.integer("RATE_LIMIT_BURST", &cfg.RateLimit.Burst)
	e.decimal("RATE_LIMIT_WRITE_RATE", &cfg.RateLimit.WriteRate)
	e.integer("RATE_LIMIT_WRITE_BURST", &cfg.RateLimit.WriteBurst)
	e.duration("RATE_LIMIT_TTL", &cfg.RateLimit.TTL)
	e.integer("RATE_LIMIT_MAX_BUCKETS", &cfg.RateLimit.MaxBuckets)

	e.str("PPROF_ADDR", &cfg.Pprof.Addr)
	e.str("PPROF_USER", &cfg.Pprof.User)
	e.str("PPROF_PASS", &cfg.Pprof.Pass)

	if err := errors.Join(e.errs...); err != nil {
		return nil, err
	}

	fs := pflag.NewFlagSet("dispatch", pflag.ContinueOnError)
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "order store backend: postgres|memory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	fs.StringSliceVar(&cfg.Notify.Sinks, "notify", cfg.Notify.Sinks, "notification sinks: log,kafka,nats,amqp")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if p, err := strconv.Atoi(c.DB.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid POSTGRES_PORT: %q", c.DB.Port)
	}
	if c.Store != StorePostgres && c.Store != StoreMemory {
		return fmt.Errorf("invalid store %q: want %s or %s", c.Store, StorePostgres, StoreMemory)
	}
	if _, err := logx.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.OperationTimeout <= 0 {
		return fmt.Errorf("invalid OPERATION_TIMEOUT: %s", c.OperationTimeout)
	}
	for i, s := range c.Notify.Sinks {
		s = strings.ToLower(strings.TrimSpace(s))
		switch s {
		case SinkLog, SinkKafka, SinkNATS, SinkAMQP:
		default:
			return fmt.Errorf("unknown notification sink %q", s)
		}
		c.Notify.Sinks[i] = s
	}
	if c.Notify.Has(SinkKafka) && len(c.Kafka.Brokers) == 0 {
		return errors.New("notification sink kafka requires KAFKA_BROKERS")
	}
	if c.Notify.Has(SinkNATS) && c.NATS.URL == "" {
		return errors.New("notification sink nats requires NATS_URL")
	}
	if c.Notify.Has(SinkAMQP) && c.AMQP.URL == "" {
		return errors.New("notification sink amqp requires AMQP_URL")
	}
	if c.Notify.Buffer <= 0 || c.Notify.MaxAttempts <= 0 {
		return errors.New("NOTIFY_BUFFER and NOTIFY_MAX_ATTEMPTS must be positive")
	}
	// fees are charged in cents, so anything that rounds to 0 is as bad as 0
	for _, fee := range []float64{c.Policy.OwnFee, c.Policy.ThirdPartyFee, c.Policy.MarketplaceFee} {
		if domain.MoneyFromFloat(fee) <= 0 {
			return fmt.Errorf("policy fees must be at least 0.01, got %v", fee)
		}
	}
	if c.Policy.ETA <= 0 || c.Monitor.StaleAfter <= 0 {
		return errors.New("POLICY_ETA and MONITOR_STALE_AFTER must be positive")
	}
	return nil
}

// envReader overrides values from non-empty environment variables and collects parse errors.
type envReader struct{ errs []error }

func (e *envReader) lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e *envReader) integer(key string, dst *int) {
	if v, ok := e.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}
}

func (e *envReader) decimal(key string, dst *float64) {
	if v, ok := e.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = f
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	if v, ok := e.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}
}

func (e *envReader) list(key string, dst *[]string) {
	if v, ok := e.lookup(key); ok {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*dst = out
	}
}
