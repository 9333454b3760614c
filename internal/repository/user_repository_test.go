package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"catalog/internal/db"
	apperrors "catalog/internal/errors"
	"catalog/internal/model"
)

func newUserRepo(t *testing.T) UserRepository {
	t.Helper()
	gormDB, err := db.Open(context.Background(), db.DriverSQLite, ":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	return NewUserRepository(gormDB)
}

func TestUserRepository_CreateEnforcesUniqueness(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Username: "alice", Email: "alice@x.com", PasswordHash: "h", Role: model.RoleUser}))

	tests := []struct {
		name string
		user *model.User
	}{
		{"same username", &model.User{Username: "alice", Email: "other@x.com", PasswordHash: "h", Role: model.RoleUser}},
		{"same email", &model.User{Username: "alice2", Email: "alice@x.com", PasswordHash: "h", Role: model.RoleUser}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			assert.ErrorIs(t, err, apperrors.ErrDuplicateCredential)
		})
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_ConcurrentCreateSingleWinner(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	const attempts = 8
	var (
		wg   sync.WaitGroup
		errs = make([]error, attempts)
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, &model.User{
				Username:     "racer",
				Email:        fmt.Sprintf("racer%d@x.com", i),
				PasswordHash: "h",
				Role:         model.RoleUser,
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrDuplicateCredential)
	}
	assert.Equal(t, 1, created)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_UpdateRole(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	user := &model.User{Username: "bob", Email: "bob@x.com", PasswordHash: "h", Role: model.RoleUser}
	require.NoError(t, repo.Create(ctx, user))

	// Setting the current role again is not a missing row.
	require.NoError(t, repo.UpdateRole(ctx, user.ID, model.RoleUser))
	require.NoError(t, repo.UpdateRole(ctx, user.ID, model.RoleAdmin))

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, stored.Role)

	err = repo.UpdateRole(ctx, 999, model.RoleAdmin)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
