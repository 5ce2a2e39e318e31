package kafka_config

const (
	EnvKafkaBrokers  = "KAFKA_BROKERS"
	EnvKafkaClientID = "KAFKA_CLIENT_ID"

	EnvProducerMaxAttempts  = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	EnvProducerBatchTimeout = "KAFKA_PRODUCER_BATCH_TIMEOUT"
	EnvProducerRequiredAcks = "KAFKA_PRODUCER_REQUIRED_ACKS"
	EnvCompression          = "KAFKA_COMPRESSION"

	EnvConsumerStartOffset    = "KAFKA_CONSUMER_START_OFFSET"
	EnvConsumerMinBytes       = "KAFKA_CONSUMER_MIN_BYTES"
	EnvConsumerMaxBytes       = "KAFKA_CONSUMER_MAX_BYTES"
	EnvConsumerMaxWait        = "KAFKA_CONSUMER_MAX_WAIT"
	EnvConsumerCommitInterval = "KAFKA_CONSUMER_COMMIT_INTERVAL"
	EnvConsumerSessionTimeout = "KAFKA_CONSUMER_SESSION_TIMEOUT"
	EnvConsumerMaxRetries     = "KAFKA_CONSUMER_MAX_RETRIES"
	EnvConsumerRetryBackoff   = "KAFKA_CONSUMER_RETRY_BACKOFF"

	EnvLogMessages = "KAFKA_LOG_MESSAGES"
)
