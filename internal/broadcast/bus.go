package broadcast

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is one attendance update fanned out to listeners.
type Event struct {
	SessionCode    string    `json:"sessionCode"`
	StudentID      string    `json:"studentId"`
	StudentName    string    `json:"studentName"`
	TotalAttendees int       `json:"totalAttendees"`
	Timestamp      time.Time `json:"timestamp"`
}

// Bus is the abstraction over fan-out backends. Delivery is fire-and-forget
// and at-most-once: subscribers that cannot keep up lose events, and
// subscribers that join late never see earlier ones.
type Bus interface {
	Publish(ctx context.Context, evt Event) error
	// Subscribe returns a channel of events and a cancel func that releases
	// the subscription and closes the channel.
	Subscribe(ctx context.Context) (<-chan Event, func(), error)
}

// subscriberBuffer bounds how far a slow listener may lag before dropping.
const subscriberBuffer = 16

// Memory is the in-process hub used by default and in tests.
type Memory struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

// NewMemory creates an in-process bus.
func NewMemory() *Memory {
	return &Memory{subs: make(map[int]chan Event)}
}

// Publish delivers the event to every current subscriber without blocking.
func (b *Memory) Publish(_ context.Context, evt Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

// Subscribe registers a listener.
func (b *Memory) Subscribe(_ context.Context) (<-chan Event, func(), error) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}

// RedisBus fans events out over a Redis pub/sub channel so multiple API
// instances share one event stream.
type RedisBus struct {
	client  *redis.Client
	channel string
}

// NewRedisBus dials redis with short timeouts and publishes on the given
// pub/sub channel. The connection is lazy; Healthy reports whether it is
// actually usable.
func NewRedisBus(addr, channel string) *RedisBus {
	if channel == "" {
		channel = "classroll:attendance"
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &RedisBus{client: client, channel: channel}
}

// Healthy verifies redis connectivity for the health endpoint.
func (b *RedisBus) Healthy(ctx context.Context) bool {
	if b == nil || b.client == nil {
		return false
	}
	return b.client.Ping(ctx).Err() == nil
}

// Publish marshals the event and publishes it.
func (b *RedisBus) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Subscribe streams events from the pub/sub channel. Frames that fail to
// decode are skipped.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	ps := b.client.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, err
	}
	out := make(chan Event, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				continue
			}
			select {
			case out <- evt:
			default:
			}
		}
	}()
	cancel := func() { _ = ps.Close() }
	return out, cancel, nil
}
