package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	ErrPublisherFull   = errors.New("publisher buffer full")
	ErrPublisherClosed = errors.New("publisher closed")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher queues events and writes them from one goroutine so order
// placement never waits on the broker.
type KafkaPublisher struct {
	writer       messageWriter
	log          *zap.Logger
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	inbox  chan kafka.Message
	done   chan struct{}
}

func NewKafkaPublisher(log *zap.Logger, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicOrders,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(w, log, 256)
}

func newKafkaPublisher(w messageWriter, log *zap.Logger, buf int) *KafkaPublisher {
	p := &KafkaPublisher{
		writer:       w,
		log:          log,
		writeTimeout: 10 * time.Second,
		inbox:        make(chan kafka.Message, buf),
		done:         make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for msg := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.log.Error("failed to publish event",
				zap.String("key", string(msg.Key)),
				zap.String("event_type", eventType(msg)),
				zap.Error(err))
		}
		cancel()
	}
}

func eventType(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}

func (p *KafkaPublisher) Publish(_ context.Context, event Event) error {
	env, err := newEnvelope(event, time.Now())
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.Type, err)
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		return ErrPublisherFull
	}
}

// Close flushes queued events and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}
