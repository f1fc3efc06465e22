package purchase

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/realtime"
	dErrors "storefront/pkg/domain-errors"
)

type publishedEvent struct {
	kind    realtime.Kind
	payload any
	scope   realtime.Scope
}

type fakeBroadcaster struct {
	events []publishedEvent
}

func (f *fakeBroadcaster) Publish(kind realtime.Kind, payload any, scope realtime.Scope) {
	f.events = append(f.events, publishedEvent{kind: kind, payload: payload, scope: scope})
}

func newTestService() (*Service, *fakeBroadcaster) {
	events := &fakeBroadcaster{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(NewInMemoryStore(), events, log, nil), events
}

func TestCreateGroupsItemsByPurchaseID(t *testing.T) {
	svc, events := newTestService()
	ctx := context.Background()

	items := []Item{
		{PurchaseID: "p-1", UserID: "alice", ProductID: "1", Title: "boots", Quantity: 1, Price: 59.99},
		{PurchaseID: "p-2", UserID: "bob", ProductID: "2", Title: "hat", Quantity: 2, Price: 19.99},
		{PurchaseID: "p-1", UserID: "alice", ProductID: "3", Title: "socks", Quantity: 3, Price: 4.99},
	}
	purchases, err := svc.Create(ctx, items)
	require.NoError(t, err)

	require.Len(t, purchases, 2)
	assert.Equal(t, "p-1", purchases[0].PurchaseID)
	require.Len(t, purchases[0].Items, 2)
	assert.Equal(t, "boots", purchases[0].Items[0].Title)
	assert.Equal(t, "socks", purchases[0].Items[1].Title)
	assert.Equal(t, "p-2", purchases[1].PurchaseID)

	// one admin-room event per purchase
	require.Len(t, events.events, 2)
	for _, ev := range events.events {
		assert.Equal(t, realtime.KindPurchaseCreated, ev.kind)
		room, scoped := ev.scope.Room()
		require.True(t, scoped)
		assert.Equal(t, realtime.AdminRoom, room)
	}
}

func TestCreateRejectsEmptyAndUnlabeledItems(t *testing.T) {
	svc, events := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = svc.Create(ctx, []Item{{UserID: "alice", ProductID: "1"}})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	assert.Empty(t, events.events)
}

func TestListReturnsStoredPurchases(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, []Item{{PurchaseID: "p-1", UserID: "alice", ProductID: "1", Title: "boots"}})
	require.NoError(t, err)

	purchases, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, "p-1", purchases[0].PurchaseID)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, []Item{{PurchaseID: "p-1", UserID: "alice", ProductID: "1", Title: "boots"}})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, Purchase{PurchaseID: "p-1", Items: []Item{{UserID: "alice", ProductID: "1", Title: "boots", Quantity: 2}}})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Items[0].Quantity)

	_, err = svc.Update(ctx, Purchase{PurchaseID: "ghost"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	require.NoError(t, svc.Delete(ctx, "p-1"))
	err = svc.Delete(ctx, "p-1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	err = svc.Delete(ctx, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}
