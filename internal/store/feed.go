package store

import (
	"context"
	"sync"
	"time"
)

// Topic names one watched collection.
type Topic string

const (
	TopicExpense Topic = "expense"
	TopicIncome  Topic = "income"
	TopicGoals   Topic = "goals"
)

// Op is the kind of change carried by an event.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event is one change notification pushed to subscribers.
type Event struct {
	Topic Topic
	Op    Op
	ID    string
	At    time.Time
}

// Feed fans change events out to subscribers. A subscription lives exactly as
// long as the context it was opened with: when the context ends the channel is
// closed and the subscriber is dropped. Slow subscribers lose events rather
// than blocking writers.
type Feed struct {
	mu   sync.Mutex
	next int
	subs map[int]*subscription
}

type subscription struct {
	topics map[Topic]bool
	ch     chan Event
}

const subscriberBuffer = 16

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]*subscription)}
}

// Subscribe registers for events on the given topics (all topics when none are
// named). The returned channel is closed when ctx is done.
func (f *Feed) Subscribe(ctx context.Context, topics ...Topic) <-chan Event {
	sub := &subscription{
		topics: make(map[Topic]bool, len(topics)),
		ch:     make(chan Event, subscriberBuffer),
	}
	for _, t := range topics {
		sub.topics[t] = true
	}

	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = sub
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
		close(sub.ch)
	}()

	return sub.ch
}

// Publish delivers the event to every matching subscriber without blocking.
func (f *Feed) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if len(sub.topics) > 0 && !sub.topics[ev.Topic] {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// Subscriber is not keeping up; drop the event.
		}
	}
}

// Subscribers returns the current subscriber count. Used by readiness checks
// and tests.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
