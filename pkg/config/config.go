// Package config reads the fila_server settings from flags, falling back to
// FILA_* environment variables and then to defaults.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/morfien101/fila/pkg/history"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Environment string
	LogLevel    string
	LogFormat   string

	HTTPAddr string
	GRPCHost string
	GRPCPort int
	Timezone string

	RateLimitEnabled   bool
	RateLimitRPS       float64
	RateLimitBurst     int
	RateLimitKeyHeader string

	History   history.Options
	Publisher history.PublisherOptions

	ShowVersion bool
	ShowHelp    bool
}

// GRPCAddress is the host:port the gRPC server listens on.
func (c Config) GRPCAddress() string {
	return c.GRPCHost + ":" + strconv.Itoa(c.GRPCPort)
}

// Load parses args (without the program name). Usage goes to out when the
// flag set prints it.
func Load(args []string, out io.Writer) (Config, error) {
	var cfg Config
	var kafkaBrokers string
	pubDefaults := history.DefaultPublisherOptions()

	fs := flag.NewFlagSet("fila_server", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&cfg.Environment, "env", getenvDefault("FILA_ENV", "development"), "The environment name. production switches gin to release mode.")
	fs.StringVar(&cfg.LogLevel, "log-level", getenvDefault("FILA_LOG_LEVEL", "info"), "The log level to use. Options are: trace, debug, info, warn, error, fatal, panic")
	fs.StringVar(&cfg.LogFormat, "log-format", getenvDefault("FILA_LOG_FORMAT", "text"), "The log format to use. Options are: text, json")

	fs.StringVar(&cfg.HTTPAddr, "http-addr", getenvDefault("FILA_HTTP_ADDR", ":8000"), "The address the REST gateway listens on.")
	fs.StringVar(&cfg.GRPCHost, "host", getenvDefault("FILA_GRPC_HOST", "localhost"), "The host the gRPC server listens on.")
	fs.IntVar(&cfg.GRPCPort, "port", getenvIntDefault("FILA_GRPC_PORT", 50051), "The port the gRPC server listens on.")
	fs.StringVar(&cfg.Timezone, "timezone", getenvDefault("FILA_TIMEZONE", "America/Sao_Paulo"), "The timezone used to render REST timestamps.")

	fs.BoolVar(&cfg.RateLimitEnabled, "rate-limit", getenvBoolDefault("FILA_RATE_LIMIT", false), "Enables per client rate limiting on the REST gateway.")
	fs.Float64Var(&cfg.RateLimitRPS, "rate-rps", getenvFloatDefault("FILA_RATE_RPS", 10), "Requests per second allowed per client.")
	fs.IntVar(&cfg.RateLimitBurst, "rate-burst", getenvIntDefault("FILA_RATE_BURST", 20), "Burst size allowed per client.")
	fs.StringVar(&cfg.RateLimitKeyHeader, "rate-key-header", getenvDefault("FILA_RATE_KEY_HEADER", "X-Api-Key"), "Header identifying a client. Client IP is used when it is absent.")

	fs.StringVar(&cfg.History.Backend, "history-backend", getenvDefault("FILA_HISTORY_BACKEND", "log"), "Where served records are exported. Options: "+strings.Join(history.Backends, ", "))
	fs.StringVar(&cfg.History.Queue, "queue-name", getenvDefault("FILA_QUEUE_NAME", "default"), "The name of this queue in the history backend.")
	fs.StringVar(&cfg.History.Table, "history-table", getenvDefault("FILA_HISTORY_TABLE", ""), "The DynamoDB table or Firestore collection for served records.")
	fs.StringVar(&cfg.History.GCPProject, "gcp-project", getenvDefault("FILA_GCP_PROJECT", ""), "The GCP project ID to use when backend is gcp.")
	fs.StringVar(&cfg.History.FirestoreDatabase, "firestore-database", getenvDefault("FILA_FIRESTORE_DATABASE", ""), "The Firestore database ID. Empty uses the default database.")
	fs.StringVar(&cfg.History.RedisAddr, "redis-addr", getenvDefault("FILA_REDIS_ADDR", ""), "The Redis address when backend is redis.")
	fs.StringVar(&cfg.History.RedisPassword, "redis-password", getenvDefault("FILA_REDIS_PASSWORD", ""), "The Redis password.")
	fs.IntVar(&cfg.History.RedisDB, "redis-db", getenvIntDefault("FILA_REDIS_DB", 0), "The Redis database number.")
	fs.StringVar(&cfg.History.RedisPrefix, "redis-prefix", getenvDefault("FILA_REDIS_PREFIX", "fila"), "Prefix of the Redis keys.")
	fs.StringVar(&kafkaBrokers, "kafka-brokers", getenvDefault("FILA_KAFKA_BROKERS", ""), "Comma separated Kafka brokers when backend is kafka.")
	fs.StringVar(&cfg.History.KafkaTopic, "kafka-topic", getenvDefault("FILA_KAFKA_TOPIC", ""), "The Kafka topic for served records.")
	fs.StringVar(&cfg.History.PostgresDSN, "postgres-dsn", getenvDefault("FILA_POSTGRES_DSN", ""), "The Postgres DSN when backend is postgres.")

	fs.IntVar(&cfg.Publisher.BufferSize, "history-buffer", getenvIntDefault("FILA_HISTORY_BUFFER", pubDefaults.BufferSize), "Served records held in memory waiting for export.")
	fs.IntVar(&cfg.Publisher.Workers, "history-workers", getenvIntDefault("FILA_HISTORY_WORKERS", pubDefaults.Workers), "Number of export workers.")
	fs.IntVar(&cfg.Publisher.Retries, "history-retries", getenvIntDefault("FILA_HISTORY_RETRIES", pubDefaults.Retries), "Attempts per served record before giving up.")
	fs.DurationVar(&cfg.Publisher.RetryBackoff, "history-backoff", getenvDurationDefault("FILA_HISTORY_BACKOFF", pubDefaults.RetryBackoff), "Backoff between export attempts, multiplied by the attempt number.")
	fs.DurationVar(&cfg.Publisher.WriteTimeout, "history-timeout", getenvDurationDefault("FILA_HISTORY_TIMEOUT", pubDefaults.WriteTimeout), "Timeout of a single export write.")

	fs.BoolVar(&cfg.ShowVersion, "v", false, "Shows the version.")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Shows the help message.")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.ShowHelp {
		fs.PrintDefaults()
		return cfg, nil
	}
	cfg.History.KafkaBrokers = splitList(kafkaBrokers)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %v", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q, use text or json", c.LogFormat)
	}
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port %d", c.GRPCPort)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %v", c.Timezone, err)
	}
	if c.RateLimitEnabled {
		if c.RateLimitRPS <= 0 {
			return fmt.Errorf("rate limit rps must be positive, got %v", c.RateLimitRPS)
		}
		if c.RateLimitBurst <= 0 {
			return fmt.Errorf("rate limit burst must be positive, got %d", c.RateLimitBurst)
		}
	}
	if !knownBackend(c.History.Backend) {
		return fmt.Errorf("unsupported history backend %q, use one of: %s", c.History.Backend, strings.Join(history.Backends, ", "))
	}
	if c.Publisher.BufferSize <= 0 || c.Publisher.Workers <= 0 || c.Publisher.Retries <= 0 {
		return fmt.Errorf("history buffer, workers and retries must be positive")
	}
	return nil
}

func knownBackend(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, b := range history.Backends {
		if b == name {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
