package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Provider fetches published menus from the external catalog system.
// A failed fetch yields an error the caller surfaces as an empty view;
// there is no automatic retry.
type Provider interface {
	FetchMenu(ctx context.Context, menuID uuid.UUID) (*Menu, error)
}

// Store is the ingestion-side interface to the shared dish catalog.
type Store interface {
	ListNames(ctx context.Context, lang Language) ([]string, error)
	InsertDish(ctx context.Context, dish *Dish) error
	ListDishes(ctx context.Context) ([]*Dish, error)
}
