package realtime

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/client"
)

func startTestServer(t *testing.T) string {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := newTestHub(t)
	srv := httptest.NewServer(NewHandler(hub, log))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialTestClient(t *testing.T, url string) *client.Client {
	t.Helper()
	c, err := client.Dial(context.Background(), url,
		client.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func waitForNotifications(t *testing.T, c *client.Client, n int) []client.Notification {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(c.Notifications()) >= n
	}, 2*time.Second, 10*time.Millisecond)
	return c.Notifications()
}

func TestPurchaseReachesAdminRoomOnly(t *testing.T) {
	url := startTestServer(t)

	admin := dialTestClient(t, url)
	shopper := dialTestClient(t, url)
	emitter := dialTestClient(t, url)

	require.NoError(t, admin.JoinAdmin())
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, emitter.EmitPurchaseCreated(map[string]string{"purchaseId": "123"}))

	got := waitForNotifications(t, admin, 1)
	assert.Equal(t, "New purchase: 123", got[0].Message)
	assert.Equal(t, client.SeveritySuccess, got[0].Severity)

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, shopper.Notifications())
}

func TestProductEventsBroadcastToEveryone(t *testing.T) {
	url := startTestServer(t)

	a := dialTestClient(t, url)
	b := dialTestClient(t, url)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, a.EmitProductCreated(map[string]any{"id": 7, "title": "sneakers"}))

	for _, c := range []*client.Client{a, b} {
		got := waitForNotifications(t, c, 1)
		assert.Equal(t, "New product added: sneakers", got[0].Message)
		assert.Equal(t, client.SeveritySuccess, got[0].Severity)
	}
}

func TestCartUpdateTargetsOneShopper(t *testing.T) {
	url := startTestServer(t)

	alice := dialTestClient(t, url)
	bob := dialTestClient(t, url)

	require.NoError(t, alice.JoinUser("alice"))
	require.NoError(t, bob.JoinUser("bob"))
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, alice.EmitCartUpdated(map[string]any{"userId": "bob", "items": 2}))

	got := waitForNotifications(t, bob, 1)
	assert.Equal(t, "Your cart has been updated", got[0].Message)
	assert.Equal(t, client.SeverityInfo, got[0].Severity)

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, alice.Notifications())
}

func TestDisconnectedClientIsForgotten(t *testing.T) {
	url := startTestServer(t)

	admin := dialTestClient(t, url)
	leaver := dialTestClient(t, url)
	require.NoError(t, admin.JoinAdmin())
	require.NoError(t, leaver.JoinAdmin())
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, leaver.Close())
	time.Sleep(100 * time.Millisecond)

	emitter := dialTestClient(t, url)
	require.NoError(t, emitter.EmitPurchaseCreated(map[string]string{"purchaseId": "456"}))

	got := waitForNotifications(t, admin, 1)
	assert.Equal(t, "New purchase: 456", got[0].Message)
}

// syncBuffer lets the test read handler log output while the server is still
// writing to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestConnectLogsClientUserAgent(t *testing.T) {
	var logs syncBuffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	hub := newTestHub(t)
	srv := httptest.NewServer(NewHandler(hub, log))
	t.Cleanup(srv.Close)

	const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"User-Agent": []string{chromeUA}})
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "websocket connected")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, logs.String(), "browser=Chrome")
	assert.Contains(t, logs.String(), "mobile=false")
}

func TestClientStoreExpiresNotifications(t *testing.T) {
	url := startTestServer(t)

	store := client.NewNotificationStore(client.WithTTL(200 * time.Millisecond))
	receiver, err := client.Dial(context.Background(), url,
		client.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		client.WithStore(store),
	)
	require.NoError(t, err)
	t.Cleanup(func() { receiver.Close() })

	emitter := dialTestClient(t, url)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, emitter.EmitProductCreated(map[string]any{"id": 1, "title": "hat"}))

	require.Eventually(t, func() bool {
		return len(receiver.Store().Notifications()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// the TTL timer clears the toast without any further traffic
	require.Eventually(t, func() bool {
		return len(receiver.Store().Notifications()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMalformedFramesAreIgnored(t *testing.T) {
	url := startTestServer(t)

	sender := dialTestClient(t, url)
	receiver := dialTestClient(t, url)
	time.Sleep(100 * time.Millisecond)

	// unknown event and joins without usable payloads must not break the stream
	require.NoError(t, sender.Emit("not-a-real-event", map[string]string{"x": "y"}))
	require.NoError(t, sender.Emit("cart-updated", map[string]string{}))
	require.NoError(t, sender.EmitProductDeleted(9))

	got := waitForNotifications(t, receiver, 1)
	assert.Equal(t, "Product deleted: ID 9", got[0].Message)
	assert.Equal(t, client.SeverityWarning, got[0].Severity)
}
