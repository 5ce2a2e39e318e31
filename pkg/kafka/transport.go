package kafka

import (
	"context"
	"fmt"

	kafka_config "restobook/pkg/kafka/config"
	"restobook/pkg/logger"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

type (
	kafkaMessage = kafkago.Message
	kafkaHeader  = kafkago.Header
)

// messageWriter is the part of *kafkago.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// messageReader is the part of *kafkago.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

func compression(name string) compress.Compression {
	switch name {
	case "gzip":
		return compress.Gzip
	case "lz4":
		return compress.Lz4
	case "zstd":
		return compress.Zstd
	case "none":
		return compress.None
	default:
		return compress.Snappy
	}
}

func requiredAcks(acks int) kafkago.RequiredAcks {
	switch acks {
	case 0:
		return kafkago.RequireNone
	case 1:
		return kafkago.RequireOne
	default:
		return kafkago.RequireAll
	}
}

// kafka-go chatters at info level; only its errors reach our logger.
func silentLogger() kafkago.Logger {
	return kafkago.LoggerFunc(func(string, ...any) {})
}

func errorLogger(log *logger.Logger, component string) kafkago.Logger {
	return kafkago.LoggerFunc(func(msg string, args ...any) {
		log.Error("kafka client error", "component", component, "detail", fmt.Sprintf(msg, args...))
	})
}

func newDLQWriter(cfg *kafka_config.Config, topic string, log *logger.Logger) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		Compression:  compression(cfg.Compression),
		MaxAttempts:  cfg.Producer.MaxAttempts,
		Transport:    &kafkago.Transport{ClientID: cfg.ClientID},
		Logger:       silentLogger(),
		ErrorLogger:  errorLogger(log, "dlq-writer"),
	}
}
