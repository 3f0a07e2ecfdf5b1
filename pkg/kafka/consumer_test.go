package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx context.Context

	mu     sync.Mutex
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func claimOf(offsets ...int64) *fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(offsets))
	for _, o := range offsets {
		ch <- &sarama.ConsumerMessage{Topic: "notifications", Offset: o, Value: []byte("{}")}
	}
	close(ch)
	return &fakeClaim{messages: ch}
}

func testConsumer(handler Handler) *Consumer {
	cfg := DefaultConsumerConfig([]string{"localhost:9092"}, "test-group", "notifications")
	cfg.RetryBackoffDuration = time.Millisecond
	return NewConsumerFromGroup(nil, cfg, handler)
}

func TestGroupHandler_MarksProcessedAndSkippedMessages(t *testing.T) {
	consumer := testConsumer(func(_ context.Context, msg *sarama.ConsumerMessage) error {
		if msg.Offset == 2 {
			return ErrSkip
		}
		return nil
	})
	session := &fakeSession{ctx: context.Background()}

	err := (&groupHandler{consumer: consumer}).ConsumeClaim(session, claimOf(1, 2, 3))

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, session.marked)
}

func TestGroupHandler_RetriesThenGivesUp(t *testing.T) {
	attempts := 0
	consumer := testConsumer(func(context.Context, *sarama.ConsumerMessage) error {
		attempts++
		return errors.New("smtp unavailable")
	})
	session := &fakeSession{ctx: context.Background()}

	err := (&groupHandler{consumer: consumer}).ConsumeClaim(session, claimOf(7))

	require.NoError(t, err)
	assert.Equal(t, consumer.config.MaxRetries+1, attempts)
	assert.Empty(t, session.marked)
}

func TestGroupHandler_RecoversOnRetry(t *testing.T) {
	attempts := 0
	consumer := testConsumer(func(context.Context, *sarama.ConsumerMessage) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})
	session := &fakeSession{ctx: context.Background()}

	require.NoError(t, (&groupHandler{consumer: consumer}).ConsumeClaim(session, claimOf(4)))
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []int64{4}, session.marked)
}

type fakeGroup struct {
	sarama.ConsumerGroup
	errs     chan error
	consumed chan struct{}
	closed   bool
}

func (g *fakeGroup) Consume(ctx context.Context, _ []string, _ sarama.ConsumerGroupHandler) error {
	select {
	case g.consumed <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return nil
}

func (g *fakeGroup) Errors() <-chan error { return g.errs }

func (g *fakeGroup) Close() error {
	g.closed = true
	close(g.errs)
	return nil
}

func TestConsumer_StartStop(t *testing.T) {
	group := &fakeGroup{errs: make(chan error), consumed: make(chan struct{}, 2)}
	cfg := DefaultConsumerConfig([]string{"localhost:9092"}, "test-group", "notifications")
	consumer := NewConsumerFromGroup(group, cfg, func(context.Context, *sarama.ConsumerMessage) error { return nil })

	consumer.Start(context.Background(), 2)

	for i := 0; i < 2; i++ {
		select {
		case <-group.consumed:
		case <-time.After(time.Second):
			t.Fatal("worker did not start consuming")
		}
	}

	require.NoError(t, consumer.Stop())
	assert.True(t, group.closed)
}
