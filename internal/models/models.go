// package models defines the data model for the account persistence service
package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// User is a stored account record with optional billing-provider linkage.
//
// Optional columns map to [sql.NullString]: an invalid value means the column
// is NULL, not an empty string. ID is assigned by the store on insert.
type User struct {
	ID                     int64          `db:"id"`
	Email                  string         `db:"email"`
	AliasUsername          sql.NullString `db:"alias_username"`
	ExternalCustomerID     sql.NullString `db:"external_customer_id"`
	ExternalSubscriptionID sql.NullString `db:"external_subscription_id"`
	SubscriptionStatus     sql.NullString `db:"subscription_status"`
	CreatedAt              time.Time      `db:"created_at"`
	UpdatedAt              time.Time      `db:"updated_at"`
}

// Validate checks that the user carries the minimum data required for storage.
// Email normalization (case, trimming) is the caller's concern.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("user email must not be empty")
	}
	return nil
}

// HasBilling reports whether the user is linked to a billing-provider customer.
func (u *User) HasBilling() bool {
	return u.ExternalCustomerID.Valid
}

// UserView is the JSON projection of a [User]. Optional columns render as
// null rather than the sql.NullString wrapper. Shared by the lookup API and
// the CLI so the two surfaces cannot drift.
type UserView struct {
	ID                     int64     `json:"id"`
	Email                  string    `json:"email"`
	AliasUsername          *string   `json:"alias_username"`
	ExternalCustomerID     *string   `json:"external_customer_id"`
	ExternalSubscriptionID *string   `json:"external_subscription_id"`
	SubscriptionStatus     *string   `json:"subscription_status"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// View returns the JSON projection of the user.
func (u *User) View() UserView {
	ptr := func(ns sql.NullString) *string {
		if !ns.Valid {
			return nil
		}
		return &ns.String
	}
	return UserView{
		ID:                     u.ID,
		Email:                  u.Email,
		AliasUsername:          ptr(u.AliasUsername),
		ExternalCustomerID:     ptr(u.ExternalCustomerID),
		ExternalSubscriptionID: ptr(u.ExternalSubscriptionID),
		SubscriptionStatus:     ptr(u.SubscriptionStatus),
		CreatedAt:              u.CreatedAt,
		UpdatedAt:              u.UpdatedAt,
	}
}

// BillingLink carries the billing-provider fields attached to a user row.
//
// Each field is written as given: an invalid [sql.NullString] clears the
// stored value rather than preserving it.
type BillingLink struct {
	CustomerID     sql.NullString
	SubscriptionID sql.NullString
	Status         sql.NullString
}

// NullString converts a plain string to a [sql.NullString], mapping the empty
// string to NULL.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
