// package server contains middleware & handlers for the billing webhook consumer
package server

import (
	"net/http"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, request identification, and rate limiting.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the accountd service.
// Implementations handle specific endpoints (webhooks, account lookups, health).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the method-qualified patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(pattern string, handler http.Handler)      // Handle registers a handler for the given pattern
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// NewRouter assembles the service's full routing table with the standard
// middleware stack. The rate limit applies only to the webhook endpoint.
func NewRouter(handlers []Handler, logger *log.Logger, rps float64, burst int) *BasicRouter {
	router := NewBasicRouter()
	router.Use(RequestID(), Logging(logger))

	limit := RateLimit(rps, burst)
	for _, handler := range handlers {
		if wh, ok := handler.(*WebhookHandler); ok {
			for _, route := range wh.Routes() {
				router.Handle(route, limit(wh))
			}
			continue
		}
		router.Handler(handler)
	}

	return router
}
