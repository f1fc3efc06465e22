package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/account"
	"storefront/internal/catalog"
	"storefront/internal/presence"
	"storefront/internal/purchase"
	"storefront/internal/realtime"
	"storefront/internal/token"
	httpapi "storefront/internal/transport/http"
)

type nopBroadcaster struct{}

func (nopBroadcaster) Publish(realtime.Kind, any, realtime.Scope) {}

func newTestRouter(t *testing.T) (http.Handler, *token.Service) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := token.NewService("test-key", "storefront", "storefront-api")

	return httpapi.NewRouter(httpapi.Deps{
		Logger:    log,
		Metrics:   nil,
		Catalog:   catalog.NewHandler(catalog.NewService(catalog.NewInMemoryStore(), nopBroadcaster{}, log, nil), log),
		Account:   account.NewHandler(account.NewService(account.NewInMemoryStore(), log), log),
		Purchase:  purchase.NewHandler(purchase.NewService(purchase.NewInMemoryStore(), nopBroadcaster{}, log, nil), log),
		Websocket: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusSwitchingProtocols) }),
		Presence:  presence.New(nil, time.Minute),
		Validator: tokens,
	}), tokens
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthzReportsDegradedBackend(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := token.NewService("test-key", "storefront", "storefront-api")
	r := httpapi.NewRouter(httpapi.Deps{
		Logger:    log,
		Catalog:   catalog.NewHandler(catalog.NewService(catalog.NewInMemoryStore(), nopBroadcaster{}, log, nil), log),
		Account:   account.NewHandler(account.NewService(account.NewInMemoryStore(), log), log),
		Purchase:  purchase.NewHandler(purchase.NewService(purchase.NewInMemoryStore(), nopBroadcaster{}, log, nil), log),
		Websocket: http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}),
		Presence:  presence.New(nil, time.Minute),
		Validator: tokens,
		Health:    func(context.Context) error { return errors.New("redis unreachable") },
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded"}`, rec.Body.String())
}

func TestProductRoundTripThroughRouter(t *testing.T) {
	r, _ := newTestRouter(t)

	body, _ := json.Marshal(catalog.Product{ID: 1, Title: "boots", Price: 10})
	req := httptest.NewRequest(http.MethodPost, "/api/createproducts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Response []catalog.Product `json:"response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Response, 1)
	assert.Equal(t, "boots", resp.Response[0].Title)
}

func TestAdminStatsRequiresAdminToken(t *testing.T) {
	r, tokens := newTestRouter(t)

	// no token
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// shopper token
	shopperToken, err := tokens.GenerateAccessToken(uuid.New(), false, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+shopperToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// admin token
	adminToken, err := tokens.GenerateAccessToken(uuid.New(), true, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"activeUsers":0}`, rec.Body.String())
}

func TestUnknownRouteIs404(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
