package cartsync

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartmirror/internal/domain"
)

// View is what the UI renders: the mirror snapshot plus operation status.
type View struct {
	Items      []domain.CartItem
	TotalItems int
	// Loading is true while at least one operation is requesting.
	Loading bool
	// Err is the most recent failure, cleared by the next committed operation.
	Err     error
	Pending []domain.Operation
}

type tracker struct {
	// deliver orders notifications so listeners see views in the order of the changes.
	deliver sync.Mutex

	mu        sync.Mutex
	pending   []domain.Operation
	lastErr   error
	listeners map[int]func(View)
	nextID    int
}

func newTracker() *tracker {
	return &tracker{
		listeners: make(map[int]func(View)),
	}
}

// View returns the current state.
func (s *Service) View() View {
	s.tracker.mu.Lock()
	defer s.tracker.mu.Unlock()

	return s.viewLocked()
}

// Snapshot returns the current mirror snapshot.
func (s *Service) Snapshot() domain.Snapshot {
	return s.mirror.Snapshot()
}

// Subscribe registers fn to be called with the new View after every state change.
// Views are delivered one at a time in the order the changes happened. fn runs on the
// goroutine that caused the change, must not block and must not start cart operations.
func (s *Service) Subscribe(fn func(View)) (unsubscribe func()) {
	t := s.tracker

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

func (s *Service) viewLocked() View {
	snapshot := s.mirror.Snapshot()

	return View{
		Items:      snapshot.Items,
		TotalItems: snapshot.TotalItems,
		Loading:    len(s.tracker.pending) > 0,
		Err:        s.tracker.lastErr,
		Pending:    slices.Clone(s.tracker.pending),
	}
}

// update applies fn under the lock and notifies listeners with the resulting view.
func (s *Service) update(fn func(t *tracker)) {
	t := s.tracker

	t.deliver.Lock()
	defer t.deliver.Unlock()

	t.mu.Lock()
	fn(t)
	view := s.viewLocked()
	listeners := make([]func(View), 0, len(t.listeners))
	for _, l := range t.listeners {
		listeners = append(listeners, l)
	}
	t.mu.Unlock()

	for _, l := range listeners {
		l(view)
	}
}

// inFlight is an operation in the Requesting state. The local mirror may only be
// mutated through commit, which is reachable only after begin.
type inFlight struct {
	s  *Service
	op domain.Operation
}

func (s *Service) begin(kind domain.OpKind, productID string) *inFlight {
	op := domain.NewOperation(kind, productID)
	_ = op.Transition(domain.OpRequesting) // idle -> requesting is always legal

	s.update(func(t *tracker) {
		t.pending = append(t.pending, op)
	})

	return &inFlight{s: s, op: op}
}

// commit runs apply and settles the operation as Committed, or as Failed if apply
// returns an error.
func (f *inFlight) commit(apply func() error) error {
	if err := apply(); err != nil {
		return f.fail(err)
	}

	if err := f.op.Transition(domain.OpCommitted); err != nil {
		return err
	}

	f.s.update(func(t *tracker) {
		t.pending = removeOp(t.pending, f.op.ID)
		t.lastErr = nil
	})

	return nil
}

func (f *inFlight) fail(err error) error {
	if transitionErr := f.op.Transition(domain.OpFailed); transitionErr != nil {
		return transitionErr
	}

	opErr := &domain.OpError{
		Op:        f.op.Kind,
		ProductID: f.op.ProductID,
		Err:       err,
	}
	f.op.Err = opErr

	f.s.logger.Warn("cart operation failed",
		"op", f.op.Kind,
		"operation_id", f.op.ID,
		"product_id", f.op.ProductID,
		"error", err,
	)

	f.s.update(func(t *tracker) {
		t.pending = removeOp(t.pending, f.op.ID)
		t.lastErr = opErr
	})

	return opErr
}

func removeOp(ops []domain.Operation, id uuid.UUID) []domain.Operation {
	return slices.DeleteFunc(ops, func(op domain.Operation) bool {
		return op.ID == id
	})
}
