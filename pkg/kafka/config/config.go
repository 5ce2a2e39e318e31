package kafka_config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"restobook/pkg/logger"
)

type ProducerConfig struct {
	MaxAttempts  int
	BatchTimeout time.Duration
	RequiredAcks int // -1 all replicas, 0 none, 1 leader
}

type ConsumerConfig struct {
	StartOffset    int64 // -1 newest, -2 oldest
	MinBytes       int
	MaxBytes       int
	MaxWait        time.Duration
	CommitInterval time.Duration
	SessionTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

type Config struct {
	Brokers     []string
	ClientID    string
	Compression string
	Producer    ProducerConfig
	Consumer    ConsumerConfig
	LogMessages bool
}

// Load reads the Kafka settings from the environment. clientID identifies the
// process to the brokers unless KAFKA_CLIENT_ID overrides it. Unparseable values
// are reported together with validation failures.
func Load(clientID string) (*Config, error) {
	env := &envReader{}

	cfg := &Config{
		Brokers:     splitBrokers(env.str(EnvKafkaBrokers, DefaultKafkaBrokers)),
		ClientID:    env.str(EnvKafkaClientID, clientID),
		Compression: strings.ToLower(env.str(EnvCompression, DefaultCompression)),
		Producer: ProducerConfig{
			MaxAttempts:  env.int(EnvProducerMaxAttempts, DefaultProducerMaxAttempts),
			BatchTimeout: env.duration(EnvProducerBatchTimeout, DefaultProducerBatchTimeout),
			RequiredAcks: env.int(EnvProducerRequiredAcks, DefaultProducerRequiredAcks),
		},
		Consumer: ConsumerConfig{
			StartOffset:    int64(env.int(EnvConsumerStartOffset, DefaultConsumerStartOffset)),
			MinBytes:       env.int(EnvConsumerMinBytes, DefaultConsumerMinBytes),
			MaxBytes:       env.int(EnvConsumerMaxBytes, DefaultConsumerMaxBytes),
			MaxWait:        env.duration(EnvConsumerMaxWait, DefaultConsumerMaxWait),
			CommitInterval: env.duration(EnvConsumerCommitInterval, DefaultConsumerCommitInterval),
			SessionTimeout: env.duration(EnvConsumerSessionTimeout, DefaultConsumerSessionTimeout),
			MaxRetries:     env.int(EnvConsumerMaxRetries, DefaultConsumerMaxRetries),
			RetryBackoff:   env.duration(EnvConsumerRetryBackoff, DefaultConsumerRetryBackoff),
		},
		LogMessages: env.bool(EnvLogMessages, DefaultLogMessages),
	}

	problems := append(env.problems, cfg.problems()...)
	if len(problems) > 0 {
		return nil, formatProblems(problems)
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if problems := cfg.problems(); len(problems) > 0 {
		return formatProblems(problems)
	}
	return nil
}

func (cfg *Config) problems() []string {
	var out []string
	add := func(format string, args ...any) { out = append(out, fmt.Sprintf(format, args...)) }

	if len(cfg.Brokers) == 0 {
		add("At least one Kafka broker is required")
	}
	if !slices.Contains(compressions, cfg.Compression) {
		add("Compression must be one of %v, got: %s", compressions, cfg.Compression)
	}

	p := cfg.Producer
	if p.MaxAttempts <= 0 {
		add("Producer.MaxAttempts must be positive, got: %d", p.MaxAttempts)
	}
	if p.BatchTimeout <= 0 {
		add("Producer.BatchTimeout must be positive, got: %s", p.BatchTimeout)
	}
	if !slices.Contains(requiredAcks, p.RequiredAcks) {
		add("Producer.RequiredAcks must be one of %v, got: %d", requiredAcks, p.RequiredAcks)
	}

	c := cfg.Consumer
	if c.StartOffset != -1 && c.StartOffset != -2 {
		add("Consumer.StartOffset must be -1 (newest) or -2 (oldest), got: %d", c.StartOffset)
	}
	if c.MinBytes <= 0 || c.MaxBytes < c.MinBytes {
		add("Consumer byte limits must satisfy 0 < MinBytes <= MaxBytes, got: %d..%d", c.MinBytes, c.MaxBytes)
	}
	if c.MaxWait <= 0 {
		add("Consumer.MaxWait must be positive, got: %s", c.MaxWait)
	}
	if c.CommitInterval < 0 {
		add("Consumer.CommitInterval cannot be negative, got: %s", c.CommitInterval)
	}
	if c.SessionTimeout <= 0 {
		add("Consumer.SessionTimeout must be positive, got: %s", c.SessionTimeout)
	}
	if c.MaxRetries < 0 {
		add("Consumer.MaxRetries cannot be negative, got: %d", c.MaxRetries)
	}
	if c.RetryBackoff < 0 {
		add("Consumer.RetryBackoff cannot be negative, got: %s", c.RetryBackoff)
	}
	return out
}

func formatProblems(problems []string) error {
	var b strings.Builder
	b.WriteString("Kafka configuration validation failed:\n")
	for i, p := range problems {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, p)
	}
	return fmt.Errorf("%s", b.String())
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka configuration loaded",
		"brokers", cfg.Brokers,
		"client_id", cfg.ClientID,
		"compression", cfg.Compression,
		"producer_required_acks", cfg.Producer.RequiredAcks,
		"producer_max_attempts", cfg.Producer.MaxAttempts,
		"consumer_start_offset", cfg.Consumer.StartOffset,
		"consumer_max_retries", cfg.Consumer.MaxRetries,
		"consumer_retry_backoff", cfg.Consumer.RetryBackoff,
		"log_messages", cfg.LogMessages,
	)
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// envReader reads typed values and remembers the ones that fail to parse.
type envReader struct {
	problems []string
}

func (e *envReader) lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	return strings.TrimSpace(value), ok && strings.TrimSpace(value) != ""
}

func (e *envReader) str(key, fallback string) string {
	if value, ok := e.lookup(key); ok {
		return value
	}
	return fallback
}

func (e *envReader) int(key string, fallback int) int {
	value, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.problems = append(e.problems, fmt.Sprintf("%s must be an integer, got: %s", key, value))
		return fallback
	}
	return n
}

func (e *envReader) bool(key string, fallback bool) bool {
	value, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.problems = append(e.problems, fmt.Sprintf("%s must be a boolean, got: %s", key, value))
		return fallback
	}
	return b
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	value, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.problems = append(e.problems, fmt.Sprintf("%s must be a duration, got: %s", key, value))
		return fallback
	}
	return d
}
