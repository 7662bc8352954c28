package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"

	"github.com/sablecliff/accountd/internal/models"
	"github.com/sablecliff/accountd/internal/repositories"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// UsersHandler serves read-only account lookups for the auth/account layer.
// It implements [Handler].
type UsersHandler struct {
	users  *repositories.UserRepository
	logger *log.Logger
}

// NewUsersHandler creates a [UsersHandler].
func NewUsersHandler(users *repositories.UserRepository, logger *log.Logger) *UsersHandler {
	return &UsersHandler{users: users, logger: logger}
}

// Routes returns the patterns this handler serves.
func (h *UsersHandler) Routes() []string {
	return []string{"GET /users", "GET /users/{id}"}
}

func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		user *models.User
		err  error
	)

	if raw := r.PathValue("id"); raw != "" {
		id, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}
		user, err = h.users.GetByID(r.Context(), id)
	} else if email := r.URL.Query().Get("email"); email != "" {
		user, err = h.users.GetByEmail(r.Context(), email)
	} else if customerID := r.URL.Query().Get("customer_id"); customerID != "" {
		user, err = h.users.GetByExternalCustomerID(r.Context(), customerID)
	} else {
		http.Error(w, "one of id, email, or customer_id is required", http.StatusBadRequest)
		return
	}

	if err != nil {
		h.logger.Error("user lookup failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, user.View())
}

// HealthHandler reports whether the store is reachable. It implements [Handler].
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler creates a [HealthHandler].
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Routes returns the patterns this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"GET /healthz"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
