package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	// Reservation events are small and rare; favour latency over batching.
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequiredAcks = -1
	DefaultCompression          = "snappy"

	DefaultConsumerStartOffset    = -2 // oldest: a new group replays pending calendar work
	DefaultConsumerMinBytes       = 1
	DefaultConsumerMaxBytes       = 1 << 20
	DefaultConsumerMaxWait        = 500 * time.Millisecond
	DefaultConsumerCommitInterval = 0 // synchronous commits
	DefaultConsumerSessionTimeout = 10 * time.Second
	DefaultConsumerMaxRetries     = 3
	DefaultConsumerRetryBackoff   = 500 * time.Millisecond

	DefaultLogMessages = true
)

var (
	compressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}
	requiredAcks = []int{-1, 0, 1}
)
