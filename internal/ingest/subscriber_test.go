package ingest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/menulingua/menulingua/internal/catalog"
	"github.com/menulingua/menulingua/pkg"
)

func deliverEvent(t *testing.T, sub *MockSubscriber, evt pkg.CatalogDishEvent) {
	t.Helper()
	payload, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("cannot marshal event: %v", err)
	}
	if err := sub.Deliver(context.Background(), pkg.CatalogDishesTopic, payload); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
}

func TestCatalogDishSubscriberCachesIngestedNames(t *testing.T) {
	sub := NewMockSubscriber()
	cache := NewNameCache(nil, nil)
	s := NewCatalogDishSubscriber(sub, cache, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deliverEvent(t, sub, pkg.CatalogDishEvent{
		EventType:  pkg.EventCatalogDishIngested,
		DishID:     "550e8400-e29b-41d4-a716-446655440400",
		Name:       "Tom Yum Soup",
		Language:   "en",
		OccurredAt: time.Now(),
	})

	if got := cache.Len(catalog.LangEnglish); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
	if known := cache.Known(catalog.LangEnglish); known[0] != "Tom Yum Soup" {
		t.Errorf("Known()[0] = %q, want %q", known[0], "Tom Yum Soup")
	}
}

func TestCatalogDishSubscriberIgnoresOtherEvents(t *testing.T) {
	sub := NewMockSubscriber()
	cache := NewNameCache(nil, nil)
	s := NewCatalogDishSubscriber(sub, cache, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deliverEvent(t, sub, pkg.CatalogDishEvent{
		EventType: pkg.EventCatalogDishRejected,
		Name:      "Pad Thai",
		Language:  "en",
	})
	deliverEvent(t, sub, pkg.CatalogDishEvent{
		EventType: pkg.EventCatalogDishIngested,
		Language:  "en",
	})

	if got := cache.Len(catalog.LangEnglish); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}

func TestCatalogDishSubscriberInvalidPayload(t *testing.T) {
	sub := NewMockSubscriber()
	s := NewCatalogDishSubscriber(sub, NewNameCache(nil, nil), nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Malformed payloads are logged and dropped, never returned as errors.
	if err := sub.Deliver(context.Background(), pkg.CatalogDishesTopic, []byte("{broken")); err != nil {
		t.Errorf("Deliver() error = %v, want nil", err)
	}
}

func TestCatalogDishSubscriberUnsupportedLanguageFallsBack(t *testing.T) {
	sub := NewMockSubscriber()
	cache := NewNameCache(nil, nil)
	s := NewCatalogDishSubscriber(sub, cache, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deliverEvent(t, sub, pkg.CatalogDishEvent{
		EventType: pkg.EventCatalogDishIngested,
		Name:      "Mystery Dish",
		Language:  "xx",
	})

	if got := cache.Len(catalog.BaseLanguage); got != 1 {
		t.Errorf("Len(base) = %d, want 1", got)
	}
}

func TestCatalogDishSubscriberRequiresSubscriber(t *testing.T) {
	s := NewCatalogDishSubscriber(nil, NewNameCache(nil, nil), nil)
	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() without subscriber should return an error")
	}
}
