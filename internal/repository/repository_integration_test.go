//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"go-shop-api/internal/database"
	"go-shop-api/internal/model"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("shop_test"),
		postgres.WithUsername("shop"),
		postgres.WithPassword("shop_test_password"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.MigrateUp(connStr))

	db, err := database.New(ctx, connStr, 4, 0)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return db.Pool
}

func TestRepositoriesAgainstPostgres(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		repo := NewUserRepository(pool)

		created, err := repo.Create(ctx, model.User{Email: "a@x.io", PasswordHash: "h", Roles: []string{model.RoleUser}})
		require.NoError(t, err)
		assert.Positive(t, created.ID)
		assert.Equal(t, []string{model.RoleUser}, created.Roles)

		_, err = repo.Create(ctx, model.User{Email: "a@x.io", PasswordHash: "h2", Roles: []string{model.RoleUser}})
		require.ErrorIs(t, err, model.ErrUserAlreadyExists)

		found, err := repo.FindByEmail(ctx, " a@x.io ")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)

		_, err = repo.FindByEmail(ctx, "missing@x.io")
		require.ErrorIs(t, err, model.ErrUserNotFound)

		found.Roles = []string{model.RoleUser, model.RoleAdmin}
		updated, err := repo.Update(ctx, found)
		require.NoError(t, err)
		assert.True(t, updated.HasRole(model.RoleAdmin))

		users, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)

		deleted, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "a@x.io", deleted.Email)

		_, err = repo.FindByID(ctx, created.ID)
		require.ErrorIs(t, err, model.ErrUserNotFound)
	})

	t.Run("shop info", func(t *testing.T) {
		repo := NewShopInfoRepository(pool)

		_, err := repo.Get(ctx)
		require.ErrorIs(t, err, model.ErrShopInfoNotFound)

		open := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		created, err := repo.Create(ctx, model.CreateShopInfoInput{
			Address:     "Main St 1",
			PhoneNumber: "+100",
			Email:       "shop@x.io",
			OpenAt: []model.OpenAt{{
				WeekDayFrom: model.Monday, WeekDayTo: model.Friday,
				TimeFrom: open, TimeTo: open.Add(8 * time.Hour),
			}},
			SocialMedia: []model.SocialMedia{{Name: "ig", Link: "https://ig/shop"}},
		})
		require.NoError(t, err)
		require.Len(t, created.OpenAt, 1)
		require.Len(t, created.SocialMedia, 1)

		addr := "Main St 2"
		sunday := model.Sunday
		updated, err := repo.Update(ctx, created.ID, model.UpdateShopInfoInput{
			Address: &addr,
			OpenAt:  []model.UpdateOpenAtInput{{ID: created.OpenAt[0].ID, WeekDayTo: &sunday}},
		})
		require.NoError(t, err)
		assert.Equal(t, addr, updated.Address)
		assert.Equal(t, "+100", updated.PhoneNumber)
		assert.Equal(t, model.Sunday, updated.OpenAt[0].WeekDayTo)

		_, err = repo.Update(ctx, created.ID, model.UpdateShopInfoInput{
			SocialMedia: []model.UpdateSocialMediaInput{{ID: 9999}},
		})
		require.ErrorIs(t, err, model.ErrInvalidInput)

		deleted, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, deleted.ID)

		_, err = repo.Get(ctx)
		require.ErrorIs(t, err, model.ErrShopInfoNotFound)
	})

	t.Run("audit", func(t *testing.T) {
		repo := NewAuditRepository(pool)
		now := time.Now().UTC()

		for i := 0; i < 3; i++ {
			require.NoError(t, repo.Log(ctx, model.AuditEntry{
				Action: "login", OccurredAt: now.Add(time.Duration(i) * time.Second),
				Actor: model.AuditActor{UserID: 7, Email: "a@x.io"}, Status: model.AuditStatusSuccess,
			}))
		}
		require.NoError(t, repo.Log(ctx, model.AuditEntry{
			Action: "login", OccurredAt: now, Status: model.AuditStatusFailure, Error: "Unauthorized",
		}))

		page, err := repo.Query(ctx, model.AuditQuery{Action: "LOGIN", ActorID: 7, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, 3, page.Meta.Total)
		assert.Equal(t, 2, page.Meta.TotalPages)
		assert.Equal(t, int64(7), page.Items[0].Actor.UserID)

		page, err = repo.Query(ctx, model.AuditQuery{Status: model.AuditStatusFailure})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Zero(t, page.Items[0].Actor.UserID)
	})
}
