package ingest

import (
	"context"
	"sync"

	"github.com/appetiteclub/apt/events"

	"github.com/menulingua/menulingua/internal/catalog"
)

// MockStore is a mock implementation of catalog.Store for testing
type MockStore struct {
	mu             sync.Mutex
	dishes         []*catalog.Dish
	names          map[catalog.Language][]string
	ListNamesFunc  func(ctx context.Context, lang catalog.Language) ([]string, error)
	InsertDishFunc func(ctx context.Context, dish *catalog.Dish) error
	ListDishesFunc func(ctx context.Context) ([]*catalog.Dish, error)
}

func NewMockStore() *MockStore {
	return &MockStore{
		names: make(map[catalog.Language][]string),
	}
}

func (m *MockStore) ListNames(ctx context.Context, lang catalog.Language) ([]string, error) {
	if m.ListNamesFunc != nil {
		return m.ListNamesFunc(ctx, lang)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.names[lang]...), nil
}

func (m *MockStore) InsertDish(ctx context.Context, dish *catalog.Dish) error {
	if m.InsertDishFunc != nil {
		return m.InsertDishFunc(ctx, dish)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dishes = append(m.dishes, dish)
	return nil
}

func (m *MockStore) ListDishes(ctx context.Context) ([]*catalog.Dish, error) {
	if m.ListDishesFunc != nil {
		return m.ListDishesFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*catalog.Dish(nil), m.dishes...), nil
}

func (m *MockStore) InsertedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dishes)
}

// MockPublisher is a mock implementation of events.Publisher for testing
type MockPublisher struct {
	mu        sync.Mutex
	published []publishedEvent
}

type publishedEvent struct {
	topic   string
	payload []byte
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedEvent{topic: topic, payload: payload})
	return nil
}

func (m *MockPublisher) Published() []publishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishedEvent(nil), m.published...)
}

// MockSubscriber is a mock implementation of events.Subscriber for testing
type MockSubscriber struct {
	mu       sync.Mutex
	handlers map[string]events.HandlerFunc
}

func NewMockSubscriber() *MockSubscriber {
	return &MockSubscriber{
		handlers: make(map[string]events.HandlerFunc),
	}
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = handler
	return nil
}

// Deliver invokes the registered handler for a topic as if a message arrived.
func (m *MockSubscriber) Deliver(ctx context.Context, topic string, payload []byte) error {
	m.mu.Lock()
	handler := m.handlers[topic]
	m.mu.Unlock()
	if handler == nil {
		return nil
	}
	return handler(ctx, payload)
}
