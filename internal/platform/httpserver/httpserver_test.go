package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"storefront/internal/platform/config"
)

func TestNewLeavesStreamingTimeoutsUnset(t *testing.T) {
	srv := New(config.Server{Addr: ":9090"}, http.NewServeMux())

	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 2*time.Minute, srv.IdleTimeout)
	assert.Equal(t, 1<<20, srv.MaxHeaderBytes)

	// Long-lived websocket sessions must not be cut off by server-wide
	// read or write deadlines.
	assert.Zero(t, srv.ReadTimeout)
	assert.Zero(t, srv.WriteTimeout)
}
