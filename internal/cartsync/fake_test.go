package cartsync_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/nikolayk812/cartmirror/internal/domain"
	"github.com/nikolayk812/cartmirror/internal/port"
	"github.com/nikolayk812/cartmirror/internal/repository"
)

var errNetwork = errors.New("network unreachable")

// fakeRemote serves the remote contract from an in-memory repository and can be told
// to fail or block individual calls.
type fakeRemote struct {
	repo *repository.MemoryCart

	mu      sync.Mutex
	failAdd error
	failGet error
	failUpd error
	failDel error
	addGate chan struct{}
	calls   []string
}

var _ port.RemoteCart = (*fakeRemote)(nil)

func newFakeRemote() *fakeRemote {
	return &fakeRemote{repo: repository.NewMemoryCart()}
}

func (f *fakeRemote) AddItem(ctx context.Context, item domain.CartItem) (domain.CartItem, error) {
	f.record("add")

	f.mu.Lock()
	gate, failAdd := f.addGate, f.failAdd
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.CartItem{}, ctx.Err()
		}
	}
	if failAdd != nil {
		return domain.CartItem{}, errors.Join(domain.ErrRemoteRejection, failAdd)
	}
	return f.repo.AddItem(ctx, item)
}

func (f *fakeRemote) GetCart(ctx context.Context, cartID domain.CartID) ([]domain.CartItem, error) {
	f.record("get")
	if err := f.failure(&f.failGet); err != nil {
		return nil, err
	}
	return f.repo.GetCart(ctx, cartID)
}

func (f *fakeRemote) UpdateItem(ctx context.Context, cartID domain.CartID, productID string, quantity int) error {
	f.record("update")
	if err := f.failure(&f.failUpd); err != nil {
		return err
	}

	updated, err := f.repo.UpdateQuantity(ctx, cartID, productID, quantity)
	if err != nil {
		return errors.Join(domain.ErrRemoteRejection, err)
	}
	if !updated {
		return domain.ErrNotFound
	}
	return nil
}

func (f *fakeRemote) DeleteItem(ctx context.Context, cartID domain.CartID, productID string) error {
	f.record("delete")
	if err := f.failure(&f.failDel); err != nil {
		return err
	}

	deleted, err := f.repo.DeleteItem(ctx, cartID, productID)
	if err != nil {
		return errors.Join(domain.ErrRemoteRejection, err)
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (f *fakeRemote) setFailure(target *error, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*target = err
}

func (f *fakeRemote) failure(target *error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if *target != nil {
		return errors.Join(domain.ErrRemoteRejection, *target)
	}
	return nil
}

func (f *fakeRemote) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
