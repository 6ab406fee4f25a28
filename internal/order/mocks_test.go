package order

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/menulingua/menulingua/internal/catalog"
)

// MockProvider is a mock implementation of catalog.Provider for testing
type MockProvider struct {
	menus         map[uuid.UUID]*catalog.Menu
	FetchMenuFunc func(ctx context.Context, menuID uuid.UUID) (*catalog.Menu, error)
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		menus: make(map[uuid.UUID]*catalog.Menu),
	}
}

func (m *MockProvider) FetchMenu(ctx context.Context, menuID uuid.UUID) (*catalog.Menu, error) {
	if m.FetchMenuFunc != nil {
		return m.FetchMenuFunc(ctx, menuID)
	}
	menu, ok := m.menus[menuID]
	if !ok {
		return nil, errors.New("menu not found")
	}
	return menu, nil
}
