package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "kafka-1:9092, kafka-2:9092,")
	t.Setenv(EnvCompression, "LZ4")
	t.Setenv(EnvConsumerRetryBackoff, "2s")

	cfg, err := Load("calendar-sync")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "kafka-2:9092" {
		t.Errorf("brokers = %v", cfg.Brokers)
	}
	if cfg.Compression != "lz4" {
		t.Errorf("compression = %s", cfg.Compression)
	}
	if cfg.ClientID != "calendar-sync" {
		t.Errorf("client id = %s", cfg.ClientID)
	}
	if cfg.Consumer.RetryBackoff != 2*time.Second {
		t.Errorf("retry backoff = %s", cfg.Consumer.RetryBackoff)
	}
	if cfg.Consumer.StartOffset != DefaultConsumerStartOffset {
		t.Errorf("start offset = %d", cfg.Consumer.StartOffset)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want []string
	}{
		{
			name: "bad enums",
			env:  map[string]string{EnvCompression: "brotli", EnvProducerRequiredAcks: "2"},
			want: []string{"Compression", "RequiredAcks"},
		},
		{
			name: "unparseable values",
			env:  map[string]string{EnvConsumerMaxRetries: "many", EnvConsumerMaxWait: "soon"},
			want: []string{EnvConsumerMaxRetries, EnvConsumerMaxWait},
		},
		{
			name: "byte limits",
			env:  map[string]string{EnvConsumerMinBytes: "100", EnvConsumerMaxBytes: "10"},
			want: []string{"MinBytes <= MaxBytes"},
		},
		{
			name: "no brokers",
			env:  map[string]string{EnvKafkaBrokers: " , "},
			want: []string{"broker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("reservations")
			if err == nil {
				t.Fatal("expected validation error")
			}
			for _, want := range tt.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error does not mention %s: %v", want, err)
				}
			}
		})
	}
}
