package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// ServiceProvider implements Provider against the catalog service HTTP API.
type ServiceProvider struct {
	client *apt.ServiceClient
	logger apt.Logger
}

func NewServiceProvider(client *apt.ServiceClient, logger apt.Logger) *ServiceProvider {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &ServiceProvider{
		client: client,
		logger: logger,
	}
}

func (p *ServiceProvider) FetchMenu(ctx context.Context, menuID uuid.UUID) (*Menu, error) {
	if p.client == nil {
		return nil, fmt.Errorf("catalog provider uninitialized")
	}
	if menuID == uuid.Nil {
		return nil, fmt.Errorf("invalid menu id")
	}

	resp, err := p.client.Get(ctx, "menus", menuID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menu %s: %w", menuID, err)
	}

	var menu Menu
	if err := rehydrate(resp.Data, &menu); err != nil {
		return nil, fmt.Errorf("failed to decode menu %s: %w", menuID, err)
	}

	p.logger.Debug("fetched menu", "menu_id", menuID.String(), "dishes", len(menu.Dishes))
	return &menu, nil
}

func rehydrate(data interface{}, out interface{}) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}
