package events

import (
	"context"
	"sync"
)

// PropertiesChanged announces that listings were written to the store.
type PropertiesChanged struct {
	IDs    []int64
	Source string
}

type Publisher interface {
	PublishPropertiesChanged(ctx context.Context, evt PropertiesChanged)
	SubscribePropertiesChanged() <-chan PropertiesChanged
}

// inMemory fans every event out to all subscribers. A subscriber whose
// buffer is full misses the event.
type inMemory struct {
	mu     sync.RWMutex
	buffer int
	subs   []chan PropertiesChanged
}

func NewInMemory(buffer int) Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &inMemory{buffer: buffer}
}

func (m *inMemory) PublishPropertiesChanged(_ context.Context, evt PropertiesChanged) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (m *inMemory) SubscribePropertiesChanged() <-chan PropertiesChanged {
	ch := make(chan PropertiesChanged, m.buffer)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}
