package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/menulingua/menulingua/internal/catalog"
	"github.com/menulingua/menulingua/pkg"
)

// ErrDuplicateDish marks a proposal whose name already exists in the catalog
// for its language.
var ErrDuplicateDish = errors.New("dish name already in catalog")

// Outcome describes how a proposal was resolved.
type Outcome struct {
	Dish       *catalog.Dish `json:"dish,omitempty"`
	Duplicate  bool          `json:"duplicate"`
	MatchedTo  string        `json:"matched_to,omitempty"`
	Similarity float64       `json:"similarity,omitempty"`
}

// Ingestor guards the shared catalog against duplicate dish entries. Names
// are contributed by independent, unsynchronized sources; every proposal is
// scored against the known names of its language before insertion.
type Ingestor struct {
	store     catalog.Store
	cache     *NameCache
	publisher events.Publisher
	source    string
	logger    apt.Logger
}

func NewIngestor(store catalog.Store, cache *NameCache, publisher events.Publisher, source string, logger apt.Logger) *Ingestor {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Ingestor{
		store:     store,
		cache:     cache,
		publisher: publisher,
		source:    source,
		logger:    logger,
	}
}

// Propose checks the candidate dish against the catalog and inserts it when
// it is new. The base-language name decides the duplicate check language
// scope unless lang says otherwise.
func (ing *Ingestor) Propose(ctx context.Context, dish *catalog.Dish, lang catalog.Language) (*Outcome, error) {
	if dish == nil {
		return nil, errors.New("dish is nil")
	}

	name := catalog.Localized(dish.Name, lang)
	if Normalize(name) == "" {
		return nil, errors.New("dish has no usable name")
	}

	known, err := ing.knownNames(ctx, lang)
	if err != nil {
		return nil, err
	}

	if match, dup := IsDuplicate(name, known); dup {
		ing.logger.Info("rejected duplicate dish",
			"name", name, "matched_to", match.Name, "similarity", match.Similarity, "language", string(lang))
		ing.publish(ctx, pkg.EventCatalogDishRejected, dish, name, lang, match)
		return &Outcome{Duplicate: true, MatchedTo: match.Name, Similarity: match.Similarity}, ErrDuplicateDish
	}

	dish.BeforeCreate()
	if err := ing.store.InsertDish(ctx, dish); err != nil {
		return nil, err
	}

	if ing.cache != nil {
		ing.cache.Add(lang, name)
	}

	ing.logger.Info("ingested dish", "dish_id", dish.ID.String(), "name", name, "language", string(lang))
	ing.publish(ctx, pkg.EventCatalogDishIngested, dish, name, lang, Match{})
	return &Outcome{Dish: dish}, nil
}

func (ing *Ingestor) knownNames(ctx context.Context, lang catalog.Language) ([]string, error) {
	if ing.cache != nil {
		return ing.cache.Known(lang), nil
	}
	return ing.store.ListNames(ctx, lang)
}

func (ing *Ingestor) publish(ctx context.Context, eventType string, dish *catalog.Dish, name string, lang catalog.Language, match Match) {
	if ing.publisher == nil {
		return
	}

	evt := pkg.CatalogDishEvent{
		EventType:  eventType,
		Name:       name,
		Language:   string(lang),
		MatchedTo:  match.Name,
		Similarity: match.Similarity,
		Source:     ing.source,
		OccurredAt: time.Now(),
	}
	if eventType == pkg.EventCatalogDishIngested {
		evt.DishID = dish.ID.String()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		ing.logger.Error("cannot marshal catalog event", "error", err)
		return
	}
	if err := ing.publisher.Publish(ctx, pkg.CatalogDishesTopic, payload); err != nil {
		ing.logger.Error("cannot publish catalog event", "error", err, "event_type", eventType)
	}
}
