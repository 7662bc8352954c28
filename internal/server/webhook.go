package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/sablecliff/accountd/internal/models"
	"github.com/sablecliff/accountd/internal/repositories"
	"github.com/sablecliff/accountd/internal/shared"
)

// SignatureHeader carries the base64 HMAC-SHA256 of the request body.
const SignatureHeader = "X-Billing-Signature"

// Billing event types this consumer acts on. Anything else is acknowledged
// and ignored so the provider does not retry.
const (
	EventSubscriptionCreated  = "subscription.created"
	EventSubscriptionUpdated  = "subscription.updated"
	EventSubscriptionCanceled = "subscription.canceled"
)

// BillingEvent is the provider's webhook envelope.
//
// Status values are stored verbatim; their vocabulary belongs to the
// provider and is not validated here.
type BillingEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Email          string `json:"email"`
		AliasUsername  string `json:"alias_username"`
		CustomerID     string `json:"customer_id"`
		SubscriptionID string `json:"subscription_id"`
		Status         string `json:"status"`
	} `json:"data"`
}

// WebhookHandler consumes billing-provider events and applies them to the
// user store. It implements [Handler].
type WebhookHandler struct {
	users  *repositories.UserRepository
	logger *log.Logger
	secret string
}

// NewWebhookHandler creates a [WebhookHandler]. An empty secret disables
// signature verification.
func NewWebhookHandler(users *repositories.UserRepository, logger *log.Logger, secret string) *WebhookHandler {
	return &WebhookHandler{users: users, logger: logger, secret: secret}
}

// Routes returns the patterns this handler serves.
func (h *WebhookHandler) Routes() []string {
	return []string{"POST /webhooks/billing"}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := shared.WithLogger(h.logger, "request_id", RequestIDFromContext(r.Context()))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("failed to read webhook body", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if h.secret != "" && !verifySignature(h.secret, body, r.Header.Get(SignatureHeader)) {
		logger.Error("invalid or missing webhook signature")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var event BillingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logger.Error("failed to unmarshal webhook event", "error", err)
		http.Error(w, shared.ErrMalformedEvent.Error(), http.StatusBadRequest)
		return
	}
	logger = shared.WithLogger(logger, "event_id", event.ID, "event_type", event.Type)

	var (
		user      *models.User
		handleErr error
	)

	switch event.Type {
	case EventSubscriptionCreated:
		user, handleErr = h.handleCreated(r, &event)
	case EventSubscriptionUpdated, EventSubscriptionCanceled:
		user, handleErr = h.handleStatusChange(r, &event)
	default:
		logger.Info("ignored webhook event")
		writeJSON(w, http.StatusOK, map[string]any{"received": true, "handled": false})
		return
	}

	if handleErr != nil {
		var badInput *eventError
		if errors.As(handleErr, &badInput) {
			logger.Error("rejected webhook event", "error", handleErr)
			http.Error(w, handleErr.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("failed to process webhook event", "error", handleErr)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if user == nil {
		// Customer was never linked locally. Acknowledge so the provider
		// stops retrying; the gap is an operator concern, not the provider's.
		logger.Warn("webhook event for unknown customer", "customer_id", event.Data.CustomerID)
		writeJSON(w, http.StatusOK, map[string]any{"received": true, "handled": false})
		return
	}

	logger.Info("webhook event processed", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]any{"received": true, "handled": true})
}

// handleCreated ensures a user exists for the event's email and overwrites
// its billing linkage.
func (h *WebhookHandler) handleCreated(r *http.Request, event *BillingEvent) (*models.User, error) {
	if event.Data.Email == "" {
		return nil, &eventError{reason: "subscription.created event missing email"}
	}

	link := models.BillingLink{
		CustomerID:     models.NullString(event.Data.CustomerID),
		SubscriptionID: models.NullString(event.Data.SubscriptionID),
		Status:         models.NullString(event.Data.Status),
	}
	return h.users.UpsertWithBilling(r.Context(), event.Data.Email, models.NullString(event.Data.AliasUsername), link)
}

// handleStatusChange updates the stored status for the event's customer.
func (h *WebhookHandler) handleStatusChange(r *http.Request, event *BillingEvent) (*models.User, error) {
	if event.Data.CustomerID == "" {
		return nil, &eventError{reason: "status event missing customer_id"}
	}

	status := event.Data.Status
	if status == "" && event.Type == EventSubscriptionCanceled {
		status = "canceled"
	}
	return h.users.SetStatusByExternalCustomerID(r.Context(), event.Data.CustomerID, status, models.NullString(event.Data.SubscriptionID))
}

// eventError marks an event the provider sent with required fields missing.
type eventError struct {
	reason string
}

func (e *eventError) Error() string {
	return fmt.Sprintf("%v: %s", shared.ErrMalformedEvent, e.reason)
}

// verifySignature compares the base64 HMAC-SHA256 of body against the header value.
func verifySignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
