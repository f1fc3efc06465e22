// Package httpserver builds the process-wide HTTP server. The timeouts here
// are shaped by the realtime endpoint: /ws holds a connection open for the
// whole session, so there is deliberately no WriteTimeout and no global
// ReadTimeout. Slowloris protection comes from ReadHeaderTimeout, and the
// JSON API enforces its own 30s per-request deadline in middleware.
package httpserver

import (
	"net/http"
	"time"

	"storefront/internal/platform/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 2 * time.Minute
	maxHeaderBytes    = 1 << 20
)

// New builds the server for the given listen config and root handler.
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}
}
