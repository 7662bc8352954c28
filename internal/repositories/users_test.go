package repositories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sablecliff/accountd/internal/models"
	"github.com/sablecliff/accountd/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with the schema applied
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := EnsureSchema(db); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return db
}

func TestEnsureSchema(t *testing.T) {
	db := setupTestDB(t)

	// Running it again must be a no-op, not an error
	require.NoError(t, EnsureSchema(db))

	var count int
	err := db.Get(&count, "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUserRepositoryCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts new row", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		user, err := repo.Create(ctx, "a@x.com", models.NullString("alice"))
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.NotZero(t, user.ID)
		assert.Equal(t, "a@x.com", user.Email)
		assert.Equal(t, "alice", user.AliasUsername.String)
		assert.False(t, user.SubscriptionStatus.Valid)
		assert.False(t, user.UpdatedAt.Before(user.CreatedAt))
	})

	t.Run("duplicate email is a no-op returning the existing row", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		first, err := repo.Create(ctx, "a@x.com", models.NullString("alice"))
		require.NoError(t, err)

		second, err := repo.Create(ctx, "a@x.com", models.NullString("impostor"))
		require.NoError(t, err)
		require.NotNil(t, second)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "alice", second.AliasUsername.String, "conflicting create must not touch the stored alias")

		var count int
		require.NoError(t, repo.db.Get(&count, "SELECT COUNT(*) FROM users WHERE email = ?", "a@x.com"))
		assert.Equal(t, 1, count)
	})

	t.Run("rejects empty email", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		_, err := repo.Create(ctx, "", sql.NullString{})
		assert.Error(t, err)
	})
}

func TestUserRepositoryLookups(t *testing.T) {
	ctx := context.Background()

	t.Run("absent rows return nil without error", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		byEmail, err := repo.GetByEmail(ctx, "nobody@x.com")
		require.NoError(t, err)
		assert.Nil(t, byEmail)

		byID, err := repo.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.Nil(t, byID)

		byCustomer, err := repo.GetByExternalCustomerID(ctx, "cus_missing")
		require.NoError(t, err)
		assert.Nil(t, byCustomer)
	})

	t.Run("round trip by all three keys", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		created, err := repo.Create(ctx, "a@x.com", models.NullString("alice"))
		require.NoError(t, err)

		_, err = repo.LinkBilling(ctx, created.ID, models.BillingLink{
			CustomerID:     models.NullString("cus_1"),
			SubscriptionID: models.NullString("sub_1"),
			Status:         models.NullString("active"),
		})
		require.NoError(t, err)

		byEmail, err := repo.GetByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.NotNil(t, byEmail)

		byID, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)

		byCustomer, err := repo.GetByExternalCustomerID(ctx, "cus_1")
		require.NoError(t, err)
		require.NotNil(t, byCustomer)

		assert.Equal(t, byEmail.ID, byID.ID)
		assert.Equal(t, byEmail.ID, byCustomer.ID)
	})
}

func TestUserRepositoryLinkBilling(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id returns nil and mutates nothing", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		created, err := repo.Create(ctx, "a@x.com", sql.NullString{})
		require.NoError(t, err)

		user, err := repo.LinkBilling(ctx, created.ID+999, models.BillingLink{
			CustomerID: models.NullString("cus_1"),
		})
		require.NoError(t, err)
		assert.Nil(t, user)

		unchanged, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, unchanged.HasBilling())
	})

	t.Run("overwrites linkage and refreshes updated_at", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		created, err := repo.Create(ctx, "a@x.com", sql.NullString{})
		require.NoError(t, err)

		linked, err := repo.LinkBilling(ctx, created.ID, models.BillingLink{
			CustomerID:     models.NullString("cus_1"),
			SubscriptionID: models.NullString("sub_1"),
			Status:         models.NullString("active"),
		})
		require.NoError(t, err)
		require.NotNil(t, linked)

		assert.Equal(t, "cus_1", linked.ExternalCustomerID.String)
		assert.Equal(t, "sub_1", linked.ExternalSubscriptionID.String)
		assert.Equal(t, "active", linked.SubscriptionStatus.String)
		assert.False(t, linked.UpdatedAt.Before(created.UpdatedAt))
	})
}

func TestUserRepositoryUpsertWithBilling(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing user and links billing", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		user, err := repo.UpsertWithBilling(ctx, "a@x.com", models.NullString("alice"), models.BillingLink{
			CustomerID:     models.NullString("cus_1"),
			SubscriptionID: models.NullString("sub_1"),
			Status:         models.NullString("active"),
		})
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, "alice", user.AliasUsername.String)
		assert.Equal(t, "cus_1", user.ExternalCustomerID.String)
		assert.Equal(t, "active", user.SubscriptionStatus.String)
	})

	t.Run("existing user keeps alias, billing fields overwritten", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		_, err := repo.Create(ctx, "a@x.com", models.NullString("alice"))
		require.NoError(t, err)

		user, err := repo.UpsertWithBilling(ctx, "a@x.com", models.NullString("someone-else"), models.BillingLink{
			CustomerID: models.NullString("cus_2"),
			Status:     models.NullString("active"),
		})
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, "alice", user.AliasUsername.String)
		assert.Equal(t, "cus_2", user.ExternalCustomerID.String)
	})

	t.Run("absent billing fields clear stored values", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		_, err := repo.UpsertWithBilling(ctx, "a@x.com", sql.NullString{}, models.BillingLink{
			CustomerID:     models.NullString("cus_1"),
			SubscriptionID: models.NullString("sub_1"),
			Status:         models.NullString("active"),
		})
		require.NoError(t, err)

		user, err := repo.UpsertWithBilling(ctx, "a@x.com", sql.NullString{}, models.BillingLink{
			CustomerID: models.NullString("cus_1"),
		})
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, "cus_1", user.ExternalCustomerID.String)
		assert.False(t, user.ExternalSubscriptionID.Valid)
		assert.False(t, user.SubscriptionStatus.Valid)
	})

	t.Run("lookup reflects the most recent upsert", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		_, err := repo.UpsertWithBilling(ctx, "a@x.com", sql.NullString{}, models.BillingLink{
			CustomerID: models.NullString("cus_1"),
			Status:     models.NullString("active"),
		})
		require.NoError(t, err)

		_, err = repo.UpsertWithBilling(ctx, "a@x.com", sql.NullString{}, models.BillingLink{
			CustomerID: models.NullString("cus_1"),
			Status:     models.NullString("past_due"),
		})
		require.NoError(t, err)

		user, err := repo.GetByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "past_due", user.SubscriptionStatus.String)
	})
}

func TestUserRepositorySetStatusByExternalCustomerID(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown customer returns nil", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		user, err := repo.SetStatusByExternalCustomerID(ctx, "cus_unknown", "canceled", sql.NullString{})
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("updates status and subscription id", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		_, err := repo.UpsertWithBilling(ctx, "a@x.com", sql.NullString{}, models.BillingLink{
			CustomerID: models.NullString("cus_1"),
		})
		require.NoError(t, err)

		user, err := repo.SetStatusByExternalCustomerID(ctx, "cus_1", "active", models.NullString("sub_123"))
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, "active", user.SubscriptionStatus.String)
		assert.Equal(t, "sub_123", user.ExternalSubscriptionID.String)

		fetched, err := repo.GetByExternalCustomerID(ctx, "cus_1")
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, "active", fetched.SubscriptionStatus.String)
		assert.Equal(t, "sub_123", fetched.ExternalSubscriptionID.String)
	})

	t.Run("omitted subscription id leaves the stored one unchanged", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		_, err := repo.UpsertWithBilling(ctx, "a@x.com", sql.NullString{}, models.BillingLink{
			CustomerID:     models.NullString("cus_1"),
			SubscriptionID: models.NullString("sub_1"),
			Status:         models.NullString("active"),
		})
		require.NoError(t, err)

		user, err := repo.SetStatusByExternalCustomerID(ctx, "cus_1", "canceled", sql.NullString{})
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, "canceled", user.SubscriptionStatus.String)
		assert.Equal(t, "sub_1", user.ExternalSubscriptionID.String)
	})
}

func TestUserRepositoryList(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(setupTestDB(t))

	empty, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := repo.Create(ctx, email, sql.NullString{})
		require.NoError(t, err)
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "a@x.com", users[0].Email)
	assert.Equal(t, "c@x.com", users[2].Email)
}

// TestUserLifecycle walks a row through creation, billing linkage, and a
// provider-driven status change.
func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(setupTestDB(t))

	created, err := repo.Create(ctx, "a@x.com", models.NullString("alice"))
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.False(t, created.SubscriptionStatus.Valid)

	upserted, err := repo.UpsertWithBilling(ctx, "a@x.com", sql.NullString{}, models.BillingLink{
		CustomerID:     models.NullString("cus_1"),
		SubscriptionID: models.NullString("sub_1"),
		Status:         models.NullString("active"),
	})
	require.NoError(t, err)
	require.NotNil(t, upserted)
	assert.Equal(t, created.ID, upserted.ID)
	assert.Equal(t, "cus_1", upserted.ExternalCustomerID.String)
	assert.Equal(t, "sub_1", upserted.ExternalSubscriptionID.String)
	assert.Equal(t, "active", upserted.SubscriptionStatus.String)

	canceled, err := repo.SetStatusByExternalCustomerID(ctx, "cus_1", "canceled", sql.NullString{})
	require.NoError(t, err)
	require.NotNil(t, canceled)
	assert.Equal(t, "canceled", canceled.SubscriptionStatus.String)
	assert.Equal(t, "sub_1", canceled.ExternalSubscriptionID.String)
	assert.False(t, canceled.UpdatedAt.Before(canceled.CreatedAt))
}
