package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidTransition is returned when a staff response does not apply to
// the item's current state. The state is left untouched; in particular a
// terminal answer is never overwritten.
var ErrInvalidTransition = errors.New("invalid response transition")

// transition is the full handshake table. Anything not listed here is
// rejected.
func transition(state ResponseState, answer Answer) (ResponseState, error) {
	switch state {
	case StatePending:
		switch answer {
		case AnswerYes:
			return StateAnsweredYes, nil
		case AnswerNo:
			return StateAnsweredNo, nil
		case AnswerChecking:
			return StateChecking, nil
		}
	case StateChecking:
		switch answer {
		case AnswerYes:
			return StateAnsweredYes, nil
		case AnswerNo:
			return StateAnsweredNo, nil
		}
	}
	return state, ErrInvalidTransition
}

// Respond applies a staff answer to the line with the given key.
func (l *Ledger) Respond(key LineItemKey, answer Answer) (*LineItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item := l.find(key)
	if item == nil {
		return nil, ErrItemNotFound
	}
	return l.respond(item, answer)
}

// RespondByID applies a staff answer to the line with the given ID.
func (l *Ledger) RespondByID(id uuid.UUID, answer Answer) (*LineItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range l.items {
		if item.ID == id {
			return l.respond(item, answer)
		}
	}
	return nil, ErrItemNotFound
}

func (l *Ledger) respond(item *LineItem, answer Answer) (*LineItem, error) {
	next, err := transition(item.Response, answer)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	item.Response = next
	item.RespondedAt = &now
	item.UpdatedAt = now
	return item, nil
}

// UnansweredCount returns how many lines still wait on staff.
func (l *Ledger) UnansweredCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	count := 0
	for _, item := range l.items {
		if item.Response.Open() {
			count++
		}
	}
	return count
}

// AllAnswered reports whether every line carrying a note has reached a
// terminal answer. Vacuously true when no line has a note.
func (l *Ledger) AllAnswered() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, item := range l.items {
		if item.Note != "" && !item.Response.Answered() {
			return false
		}
	}
	return true
}
