package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"festpass/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher sends one keyed message to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte, headers map[string]string) error
	Close() error
}

// ProducerConfig contains configuration for the synchronous producer
type ProducerConfig struct {
	Brokers          []string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	Compression      sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

func DefaultProducerConfig(brokers []string) *ProducerConfig {
	return &ProducerConfig{
		Brokers:          brokers,
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		Compression:      sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000, // 1MB
	}
}

// SaramaConfig translates cfg into a sarama producer configuration.
func (cfg *ProducerConfig) SaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = cfg.RequiredAcks
	saramaConfig.Producer.Compression = cfg.Compression
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	saramaConfig.Producer.Timeout = cfg.Timeout
	saramaConfig.Producer.Idempotent = cfg.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = cfg.MaxMessageBytes

	if cfg.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// same key, same partition: a booking's messages stay ordered
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	return saramaConfig
}

type SyncPublisher struct {
	producer sarama.SyncProducer
	log      *logger.Logger
}

func NewSyncPublisher(cfg *ProducerConfig) (*SyncPublisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, cfg.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewSyncPublisherFromProducer(producer), nil
}

// NewSyncPublisherFromProducer wraps an existing producer, such as a sarama mock.
func NewSyncPublisherFromProducer(producer sarama.SyncProducer) *SyncPublisher {
	return &SyncPublisher{producer: producer, log: logger.GetDefault().WithComponent("kafka.producer")}
}

func (p *SyncPublisher) Publish(ctx context.Context, topic, key string, value []byte, headers map[string]string) error {
	message := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(value),
		Timestamp: time.Now(),
	}
	for k, v := range headers {
		message.Headers = append(message.Headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", topic, err)
	}

	p.log.DebugContext(ctx, "message published",
		slog.String("topic", topic), slog.Int("partition", int(partition)), slog.Int64("offset", offset))
	return nil
}

func (p *SyncPublisher) Close() error {
	return p.producer.Close()
}
