package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"festpass/internal/shared/config"
	"festpass/pkg/kafka"
	"festpass/pkg/logger"
)

// Service owns the ticket notification producer and the delivery consumer.
type Service struct {
	Publisher *TicketPublisher

	consumer *kafka.Consumer
	workers  int
	log      *logger.Logger

	mu        sync.Mutex
	isRunning bool
}

// NewService connects the producer and, when SMTP is configured, the email
// consumer group.
func NewService(kafkaCfg config.KafkaConfig, emailCfg config.EmailConfig) (*Service, error) {
	log := logger.GetDefault().WithComponent("notifications")

	producer, err := kafka.NewSyncPublisher(kafka.DefaultProducerConfig(kafkaCfg.Brokers))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification producer: %w", err)
	}

	svc := &Service{
		Publisher: NewTicketPublisher(producer, kafkaCfg.NotificationTopic),
		workers:   kafkaCfg.ConsumerWorkers,
		log:       log,
	}

	sender, err := NewSMTPSender(emailCfg)
	if err != nil {
		log.Warn("email delivery disabled", slog.Any("error", err))
		return svc, nil
	}

	consumer, err := kafka.NewConsumer(
		kafka.DefaultConsumerConfig(kafkaCfg.Brokers, kafkaCfg.NotificationGroupID, kafkaCfg.NotificationTopic),
		Handler(sender),
	)
	if err != nil {
		_ = producer.Close()
		return nil, fmt.Errorf("failed to create notification consumer: %w", err)
	}
	svc.consumer = consumer

	log.Info("email notification service initialized",
		slog.String("smtp_host", emailCfg.SMTPHost), slog.Int("smtp_port", emailCfg.SMTPPort))
	return svc, nil
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return errors.New("notification service is already running")
	}
	if s.consumer != nil {
		s.consumer.Start(ctx, s.workers)
	}
	s.isRunning = true
	return nil
}

func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.isRunning && s.consumer != nil {
		if err := s.consumer.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.Publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close producer: %w", err))
	}

	s.isRunning = false
	s.log.Info("email notification service stopped")
	return errors.Join(errs...)
}
