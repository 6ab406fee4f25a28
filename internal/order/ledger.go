package order

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/menulingua/menulingua/internal/catalog"
)

var (
	ErrNilDish        = errors.New("dish is nil")
	ErrUnknownVariant = errors.New("unknown variant for dish")
	ErrItemNotFound   = errors.New("line item not found")
)

// Ledger holds a session's order lines in insertion order. It owns merge
// semantics (LineItemKey) and the derived totals. Quantity never reaches
// zero for a present item: reducing to zero removes the line.
type Ledger struct {
	mu    sync.RWMutex
	items []*LineItem
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// AddItem merges the (dish, variant, note) combination into an existing line
// or appends a new one with quantity 1. The note is trimmed; a non-empty
// note puts the new line into StatePending. Note length is a precondition
// enforced by the boundary layer.
func (l *Ledger) AddItem(dish *catalog.Dish, variantID uuid.UUID, note string, lang catalog.Language) (*LineItem, error) {
	if dish == nil {
		return nil, ErrNilDish
	}

	note = strings.TrimSpace(note)

	unitPrice, err := dish.UnitPrice(variantID)
	if err != nil {
		return nil, ErrUnknownVariant
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := LineItemKey{DishID: dish.ID, VariantID: variantID, Note: note}
	if existing := l.find(key); existing != nil {
		existing.Quantity++
		existing.UpdatedAt = time.Now()
		return existing, nil
	}

	state := StateNoQuestion
	if note != "" {
		state = StatePending
	}

	variantName := ""
	if v := dish.VariantByID(variantID); v != nil {
		variantName = catalog.Localized(v.Name, lang)
	}

	now := time.Now()
	item := &LineItem{
		ID:          uuid.New(),
		DishID:      dish.ID,
		VariantID:   variantID,
		DishName:    catalog.Localized(dish.Name, lang),
		VariantName: variantName,
		UnitPrice:   unitPrice,
		Quantity:    1,
		Note:        note,
		Response:    state,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	l.items = append(l.items, item)
	return item, nil
}

// UpdateQuantity sets the quantity of the line with the given key. A
// quantity of zero or less removes the line. Unknown keys are a no-op.
func (l *Ledger) UpdateQuantity(key LineItemKey, quantity int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.find(key)
	if item == nil {
		return
	}
	if quantity <= 0 {
		l.remove(key)
		return
	}
	item.Quantity = quantity
	item.UpdatedAt = time.Now()
}

// RemoveItem removes the line with the given key. Removing an absent key is
// a no-op.
func (l *Ledger) RemoveItem(key LineItemKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remove(key)
}

// Clear drops every line item.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

// Items returns the lines in insertion order.
func (l *Ledger) Items() []*LineItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// Find returns the line with the given key, or nil.
func (l *Ledger) Find(key LineItemKey) *LineItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.find(key)
}

// FindByID returns the line with the given ID, or nil.
func (l *Ledger) FindByID(id uuid.UUID) *LineItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, item := range l.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// ItemCount returns the sum of quantities over all lines.
func (l *Ledger) ItemCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	count := 0
	for _, item := range l.items {
		count += item.Quantity
	}
	return count
}

// Subtotal returns the sum of unit price times quantity over all lines.
func (l *Ledger) Subtotal() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := 0.0
	for _, item := range l.items {
		total += item.LineTotal()
	}
	return total
}

func (l *Ledger) find(key LineItemKey) *LineItem {
	for _, item := range l.items {
		if item.Key() == key {
			return item
		}
	}
	return nil
}

func (l *Ledger) remove(key LineItemKey) {
	for i, item := range l.items {
		if item.Key() == key {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}
