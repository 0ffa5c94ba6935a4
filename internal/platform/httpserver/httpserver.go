package httpserver

import (
	"net/http"
	"time"
)

// Handler chains cap request handling at 30 seconds; the write timeout sits
// above that so the deadline error reaches the client instead of a reset.
const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 35 * time.Second
	idleTimeout       = 60 * time.Second
)

// New builds the registry's HTTP server with its standard timeouts.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
