// Package httpserver constructs the HTTP server that fronts the search
// and sync admin API.
package httpserver

import (
	"net/http"
	"time"
)

// New builds the server. Only the header read is capped here; admin sync
// requests legitimately run for minutes while the full feeds download,
// so overall request time is bounded by the router's timeout middleware
// instead of a server-wide WriteTimeout.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
