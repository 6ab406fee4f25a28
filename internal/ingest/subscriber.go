package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/menulingua/menulingua/internal/catalog"
	"github.com/menulingua/menulingua/pkg"
)

// CatalogDishSubscriber keeps the local known-name cache current with
// dishes ingested by other instances.
type CatalogDishSubscriber struct {
	subscriber events.Subscriber
	cache      *NameCache
	logger     apt.Logger
}

func NewCatalogDishSubscriber(sub events.Subscriber, cache *NameCache, logger apt.Logger) *CatalogDishSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &CatalogDishSubscriber{
		subscriber: sub,
		cache:      cache,
		logger:     logger,
	}
}

func (s *CatalogDishSubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting catalog dish subscriber", "topic", pkg.CatalogDishesTopic)
	if s.cache != nil {
		if err := s.cache.Warm(ctx); err != nil {
			s.logger.Info("name cache warmup failed", "error", err)
		}
	}
	if s.subscriber == nil {
		return fmt.Errorf("catalog dish subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, pkg.CatalogDishesTopic, s.handleEvent)
}

func (s *CatalogDishSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var event pkg.CatalogDishEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		s.logger.Info("invalid catalog dish event", "error", err)
		return nil
	}

	if event.EventType != pkg.EventCatalogDishIngested {
		return nil
	}

	if event.Name == "" {
		s.logger.Debug("catalog event missing name", "dish_id", event.DishID)
		return nil
	}

	lang := catalog.ParseLanguage(event.Language)
	s.cache.Add(lang, event.Name)
	s.logger.Debug("catalog name cached", "name", event.Name, "language", string(lang))
	return nil
}
