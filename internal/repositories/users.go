package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/sablecliff/accountd/internal/models"
)

// userColumns is the column list scanned into [models.User].
var userColumns = []string{
	"id", "email", "alias_username",
	"external_customer_id", "external_subscription_id", "subscription_status",
	"created_at", "updated_at",
}

// UserRepository persists [models.User] records in the embedded store.
//
// Lookups signal an absent row by returning (nil, nil); errors are reserved
// for storage failures. No operation deletes rows.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user for the given email, or returns the existing row
// when one is already stored for that email (first-write-wins).
//
// The duplicate case is handled by a single conditional insert, so two
// concurrent creates for the same email cannot both insert; the loser's alias
// is discarded and the surviving row is returned unmodified.
func (r *UserRepository) Create(ctx context.Context, email string, alias sql.NullString) (*models.User, error) {
	user := models.User{Email: email}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query, args, err := builder.
		Insert("users").
		Columns("email", "alias_username").
		Values(email, alias).
		Suffix("ON CONFLICT(email) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return r.GetByEmail(ctx, email)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByEmail retrieves a user by exact email match.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, sq.Eq{"email": email})
}

// GetByID retrieves a user by primary identifier.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// GetByExternalCustomerID retrieves a user via the indexed billing-customer column.
func (r *UserRepository) GetByExternalCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	return r.getOne(ctx, sq.Eq{"external_customer_id": customerID})
}

// LinkBilling overwrites the billing linkage fields for the user with the
// given id and refreshes updated_at. Returns (nil, nil) when no row matches;
// it never creates one.
func (r *UserRepository) LinkBilling(ctx context.Context, userID int64, link models.BillingLink) (*models.User, error) {
	query, args, err := builder.
		Update("users").
		Set("external_customer_id", link.CustomerID).
		Set("external_subscription_id", link.SubscriptionID).
		Set("subscription_status", link.Status).
		Set("updated_at", sq.Expr("datetime('now')")).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to link billing: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, userID)
}

// UpsertWithBilling ensures a user exists for the given email, then
// overwrites its billing fields with the given link. An invalid NullString in
// the link clears the stored value rather than preserving it.
//
// The find-or-create step and the billing update are separate statements, so
// two concurrent upserts for the same email converge on one row but may
// interleave their updates; the last update to commit wins. Callers that need
// event ordering must serialize above this layer.
func (r *UserRepository) UpsertWithBilling(ctx context.Context, email string, alias sql.NullString, link models.BillingLink) (*models.User, error) {
	user, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if user, err = r.Create(ctx, email, alias); err != nil {
			return nil, err
		}
	}

	return r.LinkBilling(ctx, user.ID, link)
}

// SetStatusByExternalCustomerID updates the subscription status for the user
// linked to the given billing customer, refreshing updated_at. The stored
// subscription id is replaced only when one is supplied. Returns (nil, nil)
// when the customer id is not linked to any row.
func (r *UserRepository) SetStatusByExternalCustomerID(ctx context.Context, customerID, status string, subscriptionID sql.NullString) (*models.User, error) {
	update := builder.
		Update("users").
		Set("subscription_status", status).
		Set("updated_at", sq.Expr("datetime('now')")).
		Where(sq.Eq{"external_customer_id": customerID})
	if subscriptionID.Valid {
		update = update.Set("external_subscription_id", subscriptionID)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to set subscription status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return r.GetByExternalCustomerID(ctx, customerID)
}

// List retrieves all users ordered by id. Intended for operator tooling and
// exports; webhook and account callers use the keyed lookups.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query, args, err := builder.
		Select(userColumns...).
		From("users").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var users []*models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// getOne runs a single-row lookup for the given predicate.
func (r *UserRepository) getOne(ctx context.Context, pred sq.Eq) (*models.User, error) {
	query, args, err := builder.
		Select(userColumns...).
		From("users").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}
