// Package server implements the HTTP surface consuming billing-provider
// webhooks and serving account lookups.
//
// Key Implementations:
//   - [WebhookHandler] : applies subscription lifecycle events to the user
//     store (created → upsert with billing, updated/canceled → status change)
//   - [UsersHandler] : read-only lookups by id, email, or billing customer id
//   - [HealthHandler] : store reachability probe
//   - [BasicRouter] : [http.ServeMux]-backed router with a middleware stack
//
// Webhook delivery is at-least-once and unordered; unknown event types and
// unlinked customers are acknowledged with 2xx so the provider stops
// retrying. The store's weak update ordering under concurrent deliveries is
// accepted here rather than papered over (see the repositories package).
package server
