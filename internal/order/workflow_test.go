package order

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/menulingua/menulingua/internal/catalog"
)

const testAutoReturn = 25 * time.Millisecond

func newTestWorkflow(t *testing.T) (*Workflow, *Ledger) {
	t.Helper()
	ledger := NewLedger()
	return NewWorkflow(ledger, testAutoReturn, nil), ledger
}

func addNotedItem(t *testing.T, ledger *Ledger, note string) *LineItem {
	t.Helper()
	item, err := ledger.AddItem(testDish(), uuid.Nil, note, catalog.LangEnglish)
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	return item
}

func waitForState(t *testing.T, w *Workflow, want WorkflowState) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if w.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("State() = %q, want %q before deadline", w.State(), want)
}

func TestWorkflowStartsBrowsing(t *testing.T) {
	w, _ := newTestWorkflow(t)
	if got := w.State(); got != StateBrowsing {
		t.Errorf("State() = %q, want %q", got, StateBrowsing)
	}
}

func TestWorkflowCallStaff(t *testing.T) {
	tests := []struct {
		name      string
		prepare   func(t *testing.T, w *Workflow, l *Ledger)
		want      bool
		wantState WorkflowState
	}{
		{
			name: "appliesWithOpenQuestion",
			prepare: func(t *testing.T, w *Workflow, l *Ledger) {
				addNotedItem(t, l, "no nuts")
			},
			want:      true,
			wantState: StateAwaitingStaff,
		},
		{
			name:      "rejectedWithoutQuestions",
			prepare:   func(t *testing.T, w *Workflow, l *Ledger) {},
			want:      false,
			wantState: StateBrowsing,
		},
		{
			name: "rejectedWhenAlreadyAwaiting",
			prepare: func(t *testing.T, w *Workflow, l *Ledger) {
				addNotedItem(t, l, "no nuts")
				if !w.CallStaff() {
					t.Fatal("setup CallStaff() = false")
				}
			},
			want:      false,
			wantState: StateAwaitingStaff,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, l := newTestWorkflow(t)
			tt.prepare(t, w, l)

			if got := w.CallStaff(); got != tt.want {
				t.Errorf("CallStaff() = %v, want %v", got, tt.want)
			}
			if got := w.State(); got != tt.wantState {
				t.Errorf("State() = %q, want %q", got, tt.wantState)
			}
		})
	}
}

func TestWorkflowAutoReturnFiresOnce(t *testing.T) {
	w, ledger := newTestWorkflow(t)
	first := addNotedItem(t, ledger, "no nuts")
	second := addNotedItem(t, ledger, "gluten free?")

	if !w.CallStaff() {
		t.Fatal("CallStaff() = false")
	}

	if _, err := ledger.Respond(first.Key(), AnswerYes); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	w.NoteAnswered()
	if w.State() != StateAwaitingStaff {
		t.Fatal("auto-return must not schedule while questions remain open")
	}

	if _, err := ledger.Respond(second.Key(), AnswerNo); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	w.NoteAnswered()
	// Repeated evaluation after the trigger must not reschedule.
	w.NoteAnswered()
	w.NoteAnswered()

	waitForState(t, w, StateBrowsing)

	// Hand the device over again; a stale timer would flip us back.
	addNotedItem(t, ledger, "extra spicy")
	if !w.CallStaff() {
		t.Fatal("second CallStaff() = false")
	}
	time.Sleep(3 * testAutoReturn)
	if got := w.State(); got != StateAwaitingStaff {
		t.Errorf("State() = %q after new hand-over, want %q (auto-return fired more than once)", got, StateAwaitingStaff)
	}
}

func TestWorkflowAutoReturnReschedulesPerCycle(t *testing.T) {
	w, ledger := newTestWorkflow(t)
	item := addNotedItem(t, ledger, "no nuts")

	if !w.CallStaff() {
		t.Fatal("CallStaff() = false")
	}
	if _, err := ledger.Respond(item.Key(), AnswerYes); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	w.NoteAnswered()
	waitForState(t, w, StateBrowsing)

	// A fresh cycle with a fresh question gets a fresh auto-return.
	next := addNotedItem(t, ledger, "no egg")
	if !w.CallStaff() {
		t.Fatal("second CallStaff() = false")
	}
	if _, err := ledger.Respond(next.Key(), AnswerNo); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	w.NoteAnswered()
	waitForState(t, w, StateBrowsing)
}

func TestWorkflowContinueBrowsingCancelsAutoReturn(t *testing.T) {
	w, ledger := newTestWorkflow(t)
	item := addNotedItem(t, ledger, "no nuts")

	if !w.CallStaff() {
		t.Fatal("CallStaff() = false")
	}
	if _, err := ledger.Respond(item.Key(), AnswerYes); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	w.NoteAnswered()

	if !w.ContinueBrowsing() {
		t.Fatal("ContinueBrowsing() = false")
	}
	if got := w.State(); got != StateBrowsing {
		t.Fatalf("State() = %q, want %q", got, StateBrowsing)
	}

	time.Sleep(3 * testAutoReturn)
	if got := w.State(); got != StateBrowsing {
		t.Errorf("State() = %q after cancelled auto-return, want %q", got, StateBrowsing)
	}
}

func TestWorkflowContinueBrowsingOnlyWhileAwaiting(t *testing.T) {
	w, _ := newTestWorkflow(t)
	if w.ContinueBrowsing() {
		t.Error("ContinueBrowsing() while browsing = true, want false")
	}
}

func TestWorkflowFinalize(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, w *Workflow, l *Ledger)
		want    bool
	}{
		{
			name:    "emptyOrderFinalizes",
			prepare: func(t *testing.T, w *Workflow, l *Ledger) {},
			want:    true,
		},
		{
			name: "openQuestionBlocksFinalize",
			prepare: func(t *testing.T, w *Workflow, l *Ledger) {
				addNotedItem(t, l, "no nuts")
			},
			want: false,
		},
		{
			name: "answeredQuestionAllowsFinalize",
			prepare: func(t *testing.T, w *Workflow, l *Ledger) {
				item := addNotedItem(t, l, "no nuts")
				if _, err := l.Respond(item.Key(), AnswerNo); err != nil {
					t.Fatalf("Respond() error = %v", err)
				}
			},
			want: true,
		},
		{
			name: "rejectedWhileAwaitingStaff",
			prepare: func(t *testing.T, w *Workflow, l *Ledger) {
				addNotedItem(t, l, "no nuts")
				if !w.CallStaff() {
					t.Fatal("setup CallStaff() = false")
				}
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, l := newTestWorkflow(t)
			tt.prepare(t, w, l)

			if got := w.Finalize(); got != tt.want {
				t.Errorf("Finalize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWorkflowStartNewOrder(t *testing.T) {
	w, ledger := newTestWorkflow(t)
	_, _ = ledger.AddItem(testDish(), uuid.Nil, "", catalog.LangEnglish)

	if w.StartNewOrder() {
		t.Fatal("StartNewOrder() before finalize = true, want false")
	}
	if !w.Finalize() {
		t.Fatal("Finalize() = false")
	}
	if !w.StartNewOrder() {
		t.Fatal("StartNewOrder() = false")
	}

	if got := w.State(); got != StateBrowsing {
		t.Errorf("State() = %q, want %q", got, StateBrowsing)
	}
	if got := len(ledger.Items()); got != 0 {
		t.Errorf("Items() len = %d after new order, want 0", got)
	}
}

func TestWorkflowDispose(t *testing.T) {
	w, ledger := newTestWorkflow(t)
	item := addNotedItem(t, ledger, "no nuts")

	if !w.CallStaff() {
		t.Fatal("CallStaff() = false")
	}
	if _, err := ledger.Respond(item.Key(), AnswerYes); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	w.NoteAnswered()

	w.Dispose()

	time.Sleep(3 * testAutoReturn)
	if got := w.State(); got != StateAwaitingStaff {
		t.Errorf("State() = %q after dispose, want %q (timer should be cancelled)", got, StateAwaitingStaff)
	}
	if w.ContinueBrowsing() || w.CallStaff() || w.Finalize() || w.StartNewOrder() {
		t.Error("disposed workflow accepted a mutation")
	}
}

func TestScheduledTask(t *testing.T) {
	t.Run("firesAfterDelay", func(t *testing.T) {
		fired := make(chan struct{})
		task := Schedule(5*time.Millisecond, func() { close(fired) })

		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatal("task did not fire")
		}
		if !task.Done() {
			t.Error("Done() = false after firing")
		}
		if task.Cancel() {
			t.Error("Cancel() after firing = true, want false")
		}
	})

	t.Run("cancelPreventsRun", func(t *testing.T) {
		fired := make(chan struct{})
		task := Schedule(20*time.Millisecond, func() { close(fired) })

		if !task.Cancel() {
			t.Fatal("Cancel() = false, want true")
		}
		select {
		case <-fired:
			t.Fatal("cancelled task fired")
		case <-time.After(60 * time.Millisecond):
		}
		if !task.Done() {
			t.Error("Done() = false after cancel")
		}
	})

	t.Run("nilTaskIsSafe", func(t *testing.T) {
		var task *ScheduledTask
		if task.Cancel() {
			t.Error("nil Cancel() = true, want false")
		}
		if !task.Done() {
			t.Error("nil Done() = false, want true")
		}
	})
}
