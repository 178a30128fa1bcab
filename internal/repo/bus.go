package repo

import "sync"

// Topics for change notifications. Conversation-list consumers watch
// TopicConversations; per-conversation message consumers watch
// MessageTopic(conversationID).
const TopicConversations = "conversations"

// MessageTopic returns the per-conversation message topic.
func MessageTopic(conversationID string) string {
	return "messages:" + conversationID
}

// Subscription is a cancellable handle on a change topic. C receives a
// signal whenever rows under the topic may have changed; consumers re-query
// on each signal. Signals coalesce: a slow consumer sees at least one signal
// for any burst of writes, never a blocked writer.
type Subscription struct {
	C chan struct{}

	bus   *Bus
	topic string
	once  sync.Once
}

// Cancel tears the subscription down. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.bus.remove(s.topic, s)
	})
}

// Bus is an in-process invalidation bus. Writers publish after each
// successful write; delivery never blocks the publisher.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]*Subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]*Subscription)}
}

// Subscribe registers a new subscription on topic.
func (b *Bus) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		C:     make(chan struct{}, 1),
		bus:   b,
		topic: topic,
	}
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()
	return sub
}

// Publish signals every subscription on topic. Sends happen under the lock
// so a concurrent Cancel cannot close a channel mid-send; they are
// non-blocking, so holding the lock is cheap.
func (b *Bus) Publish(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs[topic] {
		select {
		case sub.C <- struct{}{}:
		default:
			// A signal is already pending; the consumer will re-query anyway.
		}
	}
}

func (b *Bus) remove(topic string, target *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[topic]
	for i, sub := range subs {
		if sub == target {
			b.subs[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
	close(target.C)
}
