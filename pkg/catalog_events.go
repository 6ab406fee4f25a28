package pkg

import "time"

const (
	// CatalogDishesTopic carries dish ingestion outcomes from every ingesting instance.
	CatalogDishesTopic = "catalog.dishes"

	// EventCatalogDishIngested identifies a dish accepted into the shared catalog.
	EventCatalogDishIngested = "catalog.dish.ingested"
	// EventCatalogDishRejected identifies a candidate rejected as a duplicate.
	EventCatalogDishRejected = "catalog.dish.rejected"
)

// CatalogDishEvent captures the outcome of one ingestion attempt. Subscribers
// use ingested events to keep their known-name caches current without
// re-reading the store.
type CatalogDishEvent struct {
	EventType  string    `json:"event_type"`
	DishID     string    `json:"dish_id,omitempty"`
	Name       string    `json:"name"`
	Language   string    `json:"language"`
	MatchedTo  string    `json:"matched_to,omitempty"`
	Similarity float64   `json:"similarity,omitempty"`
	Source     string    `json:"source,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
