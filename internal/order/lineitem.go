package order

import (
	"time"

	"github.com/google/uuid"
)

// MaxNoteLength bounds the free-text question a diner can attach to a line
// item. The HTTP boundary validates this before the ledger is touched.
const MaxNoteLength = 200

// ResponseState tracks where a line item's question sits in the
// customer/staff handshake.
type ResponseState string

const (
	// StateNoQuestion marks items carrying no note; staff never sees them.
	StateNoQuestion ResponseState = "no_question"
	// StatePending marks items whose question has not been looked at yet.
	StatePending ResponseState = "pending"
	// StateChecking marks items staff deferred with "let me check".
	StateChecking ResponseState = "checking"
	// StateAnsweredYes and StateAnsweredNo are terminal.
	StateAnsweredYes ResponseState = "answered_yes"
	StateAnsweredNo  ResponseState = "answered_no"
)

// Open reports whether the item still waits on staff.
func (s ResponseState) Open() bool {
	return s == StatePending || s == StateChecking
}

// Answered reports whether the item reached a terminal answer.
func (s ResponseState) Answered() bool {
	return s == StateAnsweredYes || s == StateAnsweredNo
}

// Answer is a staff response to a pending question.
type Answer string

const (
	AnswerYes      Answer = "yes"
	AnswerNo       Answer = "no"
	AnswerChecking Answer = "checking"
)

// LineItemKey is the merge identity for line items: adding the same dish,
// variant and note again increments quantity instead of creating a new row,
// while a distinct note always gets its own row so its question can be
// answered independently.
type LineItemKey struct {
	DishID    uuid.UUID `json:"dish_id"`
	VariantID uuid.UUID `json:"variant_id"` // uuid.Nil when no variant selected
	Note      string    `json:"note"`
}

// LineItem is one row in a diner's order.
type LineItem struct {
	ID          uuid.UUID     `json:"id"`
	DishID      uuid.UUID     `json:"dish_id"`
	VariantID   uuid.UUID     `json:"variant_id,omitempty"`
	DishName    string        `json:"dish_name"` // denormalized in the session language
	VariantName string        `json:"variant_name,omitempty"`
	UnitPrice   float64       `json:"unit_price"`
	Quantity    int           `json:"quantity"`
	Note        string        `json:"note,omitempty"`
	Response    ResponseState `json:"response"`
	RespondedAt *time.Time    `json:"responded_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// GetID returns the line item ID
func (it *LineItem) GetID() uuid.UUID {
	return it.ID
}

// ResourceType returns the resource type for URL generation
func (it *LineItem) ResourceType() string {
	return "order/line-item"
}

// Key returns the merge identity of the item.
func (it *LineItem) Key() LineItemKey {
	return LineItemKey{
		DishID:    it.DishID,
		VariantID: it.VariantID,
		Note:      it.Note,
	}
}

// LineTotal returns unit price times quantity.
func (it *LineItem) LineTotal() float64 {
	return it.UnitPrice * float64(it.Quantity)
}
