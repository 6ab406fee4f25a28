package catalog

import (
	"github.com/google/uuid"
)

// Menu is the externally owned collection of dishes a venue presents. The
// core only reads menus; authoring happens in the provider system.
type Menu struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Dishes []*Dish   `json:"dishes"`
}

// DishByID returns the dish with the given ID, or nil when absent.
func (m *Menu) DishByID(id uuid.UUID) *Dish {
	for _, d := range m.Dishes {
		if d.ID == id {
			return d
		}
	}
	return nil
}
