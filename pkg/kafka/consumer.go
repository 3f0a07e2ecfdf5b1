package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"festpass/pkg/logger"

	"github.com/IBM/sarama"
)

// Handler processes one message. A nil return marks the message consumed.
type Handler func(ctx context.Context, message *sarama.ConsumerMessage) error

// ErrSkip tells the consumer to drop a message without retrying it.
var ErrSkip = errors.New("skip message")

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeout       time.Duration
	Heartbeat            time.Duration
	MaxProcessingTime    time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig(brokers []string, groupID string, topics ...string) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              brokers,
		GroupID:              groupID,
		Topics:               topics,
		SessionTimeout:       30 * time.Second,
		Heartbeat:            3 * time.Second,
		MaxProcessingTime:    5 * time.Minute,
		OffsetOldest:         true,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

func (cfg *ConsumerConfig) SaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = cfg.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = cfg.Heartbeat
	saramaConfig.Consumer.MaxProcessingTime = cfg.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	if cfg.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	return saramaConfig
}

type Consumer struct {
	group   sarama.ConsumerGroup
	config  *ConsumerConfig
	handler Handler
	log     *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConsumer(cfg *ConsumerConfig, handler Handler) (*Consumer, error) {
	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, cfg.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}
	return NewConsumerFromGroup(group, cfg, handler), nil
}

func NewConsumerFromGroup(group sarama.ConsumerGroup, cfg *ConsumerConfig, handler Handler) *Consumer {
	return &Consumer{
		group:   group,
		config:  cfg,
		handler: handler,
		log:     logger.GetDefault().WithComponent("kafka.consumer." + cfg.GroupID),
	}
}

// Start launches numWorkers consume loops and returns immediately.
func (c *Consumer) Start(ctx context.Context, numWorkers int) {
	ctx, c.cancel = context.WithCancel(ctx)

	c.log.InfoContext(ctx, "starting consumer workers",
		slog.Int("workers", numWorkers), slog.Any("topics", c.config.Topics))

	go c.handleErrors()

	for i := 0; i < numWorkers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}
}

func (c *Consumer) runWorker(ctx context.Context, workerID int) {
	handler := &groupHandler{consumer: c, workerID: workerID}

	for {
		if err := c.group.Consume(ctx, c.config.Topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			c.log.WarnContext(ctx, "error consuming messages", slog.Int("worker", workerID), slog.Any("error", err))
			time.Sleep(time.Second)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Consumer) handleErrors() {
	for err := range c.group.Errors() {
		c.log.Warn("consumer group error", slog.Any("error", err))
	}
}

// Stop cancels the workers, waits for them and closes the group.
func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	if err := c.group.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type groupHandler struct {
	consumer *Consumer
	workerID int
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}

			if err := h.process(session.Context(), message); err != nil {
				h.consumer.log.ErrorContext(session.Context(), "failed to process message",
					slog.Int("worker", h.workerID),
					slog.String("topic", message.Topic),
					slog.Int64("offset", message.Offset),
					slog.Any("error", err))
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *groupHandler) process(ctx context.Context, message *sarama.ConsumerMessage) error {
	maxRetries := h.consumer.config.MaxRetries
	backoff := h.consumer.config.RetryBackoffDuration

	for attempt := 0; ; attempt++ {
		err := h.consumer.handler(ctx, message)
		if err == nil || errors.Is(err, ErrSkip) {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		// exponential backoff
		delay := backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
