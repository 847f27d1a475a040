package cartsync_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nikolayk812/cartmirror/internal/cartsync"
	"github.com/nikolayk812/cartmirror/internal/domain"
	"github.com/nikolayk812/cartmirror/internal/httpserver"
	"github.com/nikolayk812/cartmirror/internal/kvstore"
	"github.com/nikolayk812/cartmirror/internal/remote"
	"github.com/nikolayk812/cartmirror/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEndOverHTTP(t *testing.T) {
	ctx := t.Context()

	srv := httptest.NewServer(httpserver.NewRouter(repository.NewMemoryCart(), discardLogger(), 5*time.Second))
	t.Cleanup(srv.Close)

	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)

	client, err := remote.NewClient(remote.Options{
		BaseURL:   srv.URL,
		Timeout:   5 * time.Second,
		Transport: transport,
	})
	require.NoError(t, err)

	store := kvstore.NewMemory()
	svc := cartsync.NewWithStore(client, store, "", discardLogger())

	require.NoError(t, svc.Add(ctx, "tv-55", usd(499), 1))
	require.NoError(t, svc.Add(ctx, "tv-55", usd(499), 1))
	require.NoError(t, svc.Add(ctx, "soundbar", usd(199), 1))
	assert.Equal(t, 3, svc.Snapshot().TotalItems)

	require.NoError(t, svc.UpdateQuantity(ctx, "soundbar", 4))
	assert.Equal(t, 6, svc.Snapshot().TotalItems)

	require.NoError(t, svc.UpdateQuantity(ctx, "tv-55", 0))
	snapshot := svc.Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, "soundbar", snapshot.Items[0].ProductID)

	restarted := cartsync.NewWithStore(client, store, "", discardLogger())
	require.NoError(t, restarted.Reload(ctx))
	assert.Equal(t, snapshot, restarted.Snapshot())

	cartID := snapshot.Items[0].CartID
	remoteItems, err := client.GetCart(ctx, cartID)
	require.NoError(t, err)
	require.Len(t, remoteItems, 1)
	assert.Equal(t, 4, remoteItems[0].Quantity)

	require.NoError(t, restarted.Clear(ctx))
	require.NoError(t, restarted.Add(ctx, "camera", usd(900), 1))
	assert.NotEqual(t, cartID, restarted.Snapshot().Items[0].CartID)

	err = restarted.Add(ctx, "", usd(1), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
