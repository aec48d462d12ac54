package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chainpass/chainpass-api/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TicketsChanged is the cross-component signal emitted after a successful
// purchase so ticket-list consumers reload.
const TicketsChanged = "tickets.changed"

// Broadcaster publishes the tickets-changed signal.
type Broadcaster interface {
	BroadcastTicketsChanged(ctx context.Context) error
}

// Bus is an in-process broadcaster. Publishing never blocks: a subscriber
// that is not draining its channel misses the signal, which is fine because
// the signal carries no payload beyond "reload".
type Bus struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]chan string
}

// NewBus creates an empty in-process bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uuid.UUID]chan string)}
}

// Subscribe registers a listener and returns its channel and an
// unsubscribe function.
func (b *Bus) Subscribe() (<-chan string, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New()
	ch := make(chan string, 1)
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

// BroadcastTicketsChanged delivers the signal to every subscriber.
func (b *Bus) BroadcastTicketsChanged(_ context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- TicketsChanged:
		default:
		}
	}
	return nil
}

// refreshMessage is the JSON body published to the refresh queue.
type refreshMessage struct {
	Signal    string    `json:"signal"`
	EmittedAt time.Time `json:"emitted_at"`
}

// SQSBroadcaster publishes the signal to an SQS queue for out-of-process
// consumers.
type SQSBroadcaster struct {
	client   *sqs.Client
	queueURL string
	logger   *zap.Logger
}

// NewSQSBroadcaster wraps an SQS client and target queue URL.
func NewSQSBroadcaster(client *sqs.Client, queueURL string) *SQSBroadcaster {
	return &SQSBroadcaster{
		client:   client,
		queueURL: queueURL,
		logger:   logger.Log,
	}
}

// BroadcastTicketsChanged enqueues one refresh message.
func (s *SQSBroadcaster) BroadcastTicketsChanged(ctx context.Context) error {
	body, err := json.Marshal(refreshMessage{
		Signal:    TicketsChanged,
		EmittedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal refresh message: %w", err)
	}

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to publish refresh message: %w", err)
	}

	s.logger.Debug("Published tickets-changed signal", zap.String("queue_url", s.queueURL))
	return nil
}

// MultiBroadcaster fans the signal out to several broadcasters. The first
// failure is returned after all broadcasters have been attempted.
type MultiBroadcaster struct {
	broadcasters []Broadcaster
}

// NewMultiBroadcaster combines broadcasters into one.
func NewMultiBroadcaster(broadcasters ...Broadcaster) *MultiBroadcaster {
	return &MultiBroadcaster{broadcasters: broadcasters}
}

// BroadcastTicketsChanged publishes through every broadcaster.
func (m *MultiBroadcaster) BroadcastTicketsChanged(ctx context.Context) error {
	var firstErr error
	for _, b := range m.broadcasters {
		if err := b.BroadcastTicketsChanged(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
