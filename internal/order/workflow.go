package order

import (
	"sync"
	"time"

	"github.com/appetiteclub/apt"
)

// WorkflowState is the top-level screen state of one shared-device session.
type WorkflowState string

const (
	// StateBrowsing: the diner holds the device and edits the order.
	StateBrowsing WorkflowState = "browsing"
	// StateAwaitingStaff: the device has been handed over; staff answers
	// the open questions.
	StateAwaitingStaff WorkflowState = "awaiting_staff"
	// StateFinalized: the order summary is shown.
	StateFinalized WorkflowState = "finalized"
)

// DefaultAutoReturn is how long the "all answered" confirmation stays on
// screen before the device returns to browsing on its own.
const DefaultAutoReturn = 3 * time.Second

// Workflow drives the session's screen state from the aggregate protocol
// state of the ledger. Invalid transitions are no-ops, never faults; every
// mutator reports whether it applied.
type Workflow struct {
	mu         sync.Mutex
	state      WorkflowState
	ledger     *Ledger
	autoReturn time.Duration
	autoTask   *ScheduledTask
	autoFired  bool
	disposed   bool
	logger     apt.Logger
}

func NewWorkflow(ledger *Ledger, autoReturn time.Duration, logger apt.Logger) *Workflow {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if autoReturn <= 0 {
		autoReturn = DefaultAutoReturn
	}
	return &Workflow{
		state:      StateBrowsing,
		ledger:     ledger,
		autoReturn: autoReturn,
		logger:     logger,
	}
}

// State returns the current workflow state.
func (w *Workflow) State() WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// CallStaff hands the device to staff. Only valid while browsing with at
// least one unanswered question.
func (w *Workflow) CallStaff() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed || w.state != StateBrowsing {
		return false
	}
	if w.ledger.UnansweredCount() == 0 {
		return false
	}
	w.state = StateAwaitingStaff
	w.autoFired = false
	w.logger.Debug("workflow transition", "from", string(StateBrowsing), "to", string(StateAwaitingStaff))
	return true
}

// ContinueBrowsing returns the device to the diner immediately, cancelling
// any scheduled auto-return.
func (w *Workflow) ContinueBrowsing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed || w.state != StateAwaitingStaff {
		return false
	}
	w.autoTask.Cancel()
	w.autoTask = nil
	w.state = StateBrowsing
	w.logger.Debug("workflow transition", "from", string(StateAwaitingStaff), "to", string(StateBrowsing))
	return true
}

// NoteAnswered must be called after every applied staff answer. The first
// time it observes the ledger fully answered during an awaiting-staff cycle
// it schedules a single delayed return to browsing; repeated evaluation does
// not reschedule.
func (w *Workflow) NoteAnswered() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed || w.state != StateAwaitingStaff || w.autoFired {
		return
	}
	if w.autoTask != nil && !w.autoTask.Done() {
		return
	}
	if !w.ledger.AllAnswered() {
		return
	}
	w.autoFired = true
	w.autoTask = Schedule(w.autoReturn, w.autoReturnToBrowsing)
	w.logger.Debug("all questions answered, auto-return scheduled", "delay", w.autoReturn.String())
}

func (w *Workflow) autoReturnToBrowsing() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed || w.state != StateAwaitingStaff {
		return
	}
	w.autoTask = nil
	w.state = StateBrowsing
	w.logger.Debug("workflow auto-returned to browsing")
}

// Finalize shows the order summary. Only valid while browsing with every
// question answered (vacuously true with none).
func (w *Workflow) Finalize() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed || w.state != StateBrowsing {
		return false
	}
	if !w.ledger.AllAnswered() {
		return false
	}
	w.state = StateFinalized
	w.logger.Debug("workflow transition", "from", string(StateBrowsing), "to", string(StateFinalized))
	return true
}

// StartNewOrder resets a finalized session: the ledger is cleared and the
// device returns to browsing.
func (w *Workflow) StartNewOrder() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed || w.state != StateFinalized {
		return false
	}
	w.ledger.Clear()
	w.autoFired = false
	w.state = StateBrowsing
	w.logger.Debug("workflow reset for new order")
	return true
}

// Dispose cancels any scheduled transition. A disposed workflow rejects all
// further mutations.
func (w *Workflow) Dispose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.autoTask.Cancel()
	w.autoTask = nil
	w.disposed = true
}
