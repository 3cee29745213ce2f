// Package eventbus is the console's process-wide publish/subscribe channel.
//
// Topics:
//   - TopicRefresh: a resource list changed on the server (Event.Resource names it);
//     every consumer of that resource should re-fetch.
//   - TopicSignedOut: the session ended, either by logout or because the API
//     rejected it; consumers drop cached data and return to the login screen.
//
// The bus is created once and injected into every component that needs it.
package eventbus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Topic names a class of events.
type Topic string

const (
	TopicRefresh   Topic = "refresh"
	TopicSignedOut Topic = "signed_out"
)

// ErrClosed is returned by Next once the subscription has been closed.
var ErrClosed = errors.New("subscription closed")

// Event is one broadcast message.
type Event struct {
	Topic    Topic
	Resource string // Set for TopicRefresh
	At       time.Time
}

// Refresh builds a TopicRefresh event for resource.
func Refresh(resource string) Event {
	return Event{Topic: TopicRefresh, Resource: resource, At: time.Now()}
}

// SignedOut builds a TopicSignedOut event.
func SignedOut() Event {
	return Event{Topic: TopicSignedOut, At: time.Now()}
}

// Bus delivers published events to every current subscriber of the event's topic.
type Bus interface {
	Publish(ev Event)
	Subscribe(topics ...Topic) *Subscription
	SubscribersCount() int
}

type bus struct {
	log  *logrus.Logger
	mu   sync.Mutex
	subs map[string]*Subscription
}

// New creates an empty bus. log may be nil.
func New(log *logrus.Logger) Bus {
	return &bus{log: log, subs: make(map[string]*Subscription)}
}

// Publish queues ev on every subscription interested in its topic.
// It never blocks: each subscription buffers without bound.
func (b *bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.Lock()
	targets := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.wants(ev.Topic) {
			targets = append(targets, s)
		}
	}
	b.mu.Unlock()

	if len(targets) == 0 {
		if b.log != nil {
			b.log.WithField("topic", ev.Topic).Warn("eventbus: no subscribers")
		}
		return
	}
	for _, s := range targets {
		s.push(ev)
	}
	if b.log != nil {
		b.log.WithFields(logrus.Fields{
			"topic":       ev.Topic,
			"resource":    ev.Resource,
			"subscribers": len(targets),
		}).Debug("eventbus: published")
	}
}

// Subscribe registers a subscription for topics; with no topics it receives everything.
func (b *bus) Subscribe(topics ...Topic) *Subscription {
	s := &Subscription{
		id:     uuid.NewString(),
		topics: topics,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		bus:    b,
	}
	b.mu.Lock()
	b.subs[s.id] = s
	b.mu.Unlock()
	return s
}

// SubscribersCount returns the number of open subscriptions.
func (b *bus) SubscribersCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *bus) remove(id string) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

// Subscription is one consumer's queue of events.
type Subscription struct {
	id     string
	topics []Topic
	bus    *bus

	mu     sync.Mutex
	queue  []Event
	closed bool
	notify chan struct{}
	done   chan struct{}
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Next returns the oldest queued event, waiting until one arrives,
// the subscription is closed, or ctx is done.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return Event{}, ErrClosed
		}
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return ev, nil
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-s.done:
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// Pending returns how many events are queued.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close unregisters the subscription and wakes any waiting Next call.
// Queued events are discarded. Close is idempotent.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	close(s.done)
	s.mu.Unlock()
	s.bus.remove(s.id)
}

func (s *Subscription) wants(topic Topic) bool {
	if len(s.topics) == 0 {
		return true
	}
	for _, t := range s.topics {
		if t == topic {
			return true
		}
	}
	return false
}

func (s *Subscription) push(ev Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}
