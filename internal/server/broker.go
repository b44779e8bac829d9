package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/trailquest/hunt/internal/game"
)

// Event names match the wire contract the clients listen for.
const (
	EventTeamUpdate     = "teamUpdate"
	EventNewSelfie      = "newSelfieForVerification"
	EventSelfieRejected = "selfieRejected"
)

// Topics. TopicTeams is observed by every operator session;
// TopicVerifications carries only photos awaiting review; teamTopic(code)
// is observed by that team's own sessions.
const (
	TopicTeams         = "teams"
	TopicVerifications = "verifications"
)

func teamTopic(code string) string { return "team:" + code }

const redisChannelPrefix = "hunt:events:"

// Event is the payload published to subscribers: the event name plus the full
// team snapshot after the committed mutation.
type Event struct {
	ID   string     `json:"id"`
	Type string     `json:"type"`
	Team *game.Team `json:"team,omitempty"`
}

type publication struct {
	topic string
	data  []byte
}

// Broker is a pub/sub fan-out for team state changes. Delivery is best-effort
// and at-most-once: slow subscribers lose events and re-sync via a full pull.
// Events published for one topic are delivered in publish order.
//
// With a redis client the broker doubles as a cross-instance backplane:
// published events loop through redis pub/sub so subscribers on every instance
// see every commit. Without one, delivery stays in-process.
type Broker struct {
	logger *slog.Logger
	rdb    *redis.Client
	queue  chan publication

	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker(logger *slog.Logger, rdb *redis.Client) *Broker {
	return &Broker{
		logger: logger,
		rdb:    rdb,
		queue:  make(chan publication, 256),
		subs:   make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel receiving JSON-encoded events for the topic.
func (b *Broker) Subscribe(topic string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[chan []byte]struct{})
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the topic's subscribers.
func (b *Broker) Unsubscribe(topic string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[topic], ch)
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
	b.mu.Unlock()
}

// Publish enqueues an event for delivery and returns immediately; the mutation
// path never waits on fan-out. A full queue drops the event.
func (b *Broker) Publish(topic string, ev Event) {
	ev.ID = uuid.NewString()
	data, err := json.Marshal(ev)
	if err != nil {
		b.logger.Error("marshalling event", "type", ev.Type, "error", err)
		return
	}
	select {
	case b.queue <- publication{topic: topic, data: data}:
	default:
		b.logger.Warn("event queue full, dropping", "topic", topic, "type", ev.Type)
	}
}

// Run owns delivery until ctx is cancelled. A single goroutine drains the
// queue, which keeps per-topic delivery in publish order.
func (b *Broker) Run(ctx context.Context) error {
	if b.rdb == nil {
		for {
			select {
			case <-ctx.Done():
				return nil
			case p := <-b.queue:
				b.deliver(p.topic, p.data)
			}
		}
	}

	pubsub := b.rdb.PSubscribe(ctx, redisChannelPrefix+"*")
	defer pubsub.Close()
	incoming := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case p := <-b.queue:
			if err := b.rdb.Publish(ctx, redisChannelPrefix+p.topic, p.data).Err(); err != nil {
				b.logger.Warn("redis publish failed, delivering locally", "topic", p.topic, "error", err)
				b.deliver(p.topic, p.data)
			}
		case msg, ok := <-incoming:
			if !ok {
				return nil
			}
			b.deliver(strings.TrimPrefix(msg.Channel, redisChannelPrefix), []byte(msg.Payload))
		}
	}
}

func (b *Broker) deliver(topic string, data []byte) {
	b.mu.RLock()
	for ch := range b.subs[topic] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow; it re-syncs with a full pull.
		}
	}
	b.mu.RUnlock()
}
