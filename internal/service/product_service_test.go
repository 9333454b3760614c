package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"catalog/internal/auth"
	"catalog/internal/db"
	apperrors "catalog/internal/errors"
	"catalog/internal/events"
	"catalog/internal/model"
	"catalog/internal/repository"
)

type productEnv struct {
	db        *gorm.DB
	svc       ProductService
	publisher *MockPublisher
	owner     *model.User
	stranger  *model.User
	admin     *model.User
}

func newProductEnv(t *testing.T) *productEnv {
	t.Helper()

	gormDB, err := db.Open(context.Background(), db.DriverSQLite, ":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	env := &productEnv{
		db:        gormDB,
		publisher: new(MockPublisher),
		owner:     &model.User{Username: "owner", Email: "owner@x.com", PasswordHash: "x", Role: model.RoleUser},
		stranger:  &model.User{Username: "stranger", Email: "stranger@x.com", PasswordHash: "x", Role: model.RoleUser},
		admin:     &model.User{Username: "root", Email: "root@x.com", PasswordHash: "x", Role: model.RoleAdmin},
	}
	for _, u := range []*model.User{env.owner, env.stranger, env.admin} {
		require.NoError(t, gormDB.Create(u).Error)
	}
	env.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	env.svc = NewProductService(repository.NewProductRepository(gormDB), nil, env.publisher)
	return env
}

func (env *productEnv) create(t *testing.T, actor *model.User, name string, price string) *model.Product {
	t.Helper()
	p := decimal.RequireFromString(price)
	product, err := env.svc.Create(context.Background(), actor, ProductInput{Name: name, Description: "original", Price: &p})
	require.NoError(t, err)
	return product
}

func TestProductService_Create(t *testing.T) {
	env := newProductEnv(t)
	ctx := context.Background()

	product := env.create(t, env.owner, "Widget", "9.99")
	assert.NotZero(t, product.ID)
	assert.Equal(t, env.owner.ID, product.CreatedBy)
	assert.False(t, product.CreatedAt.IsZero())

	negative := decimal.NewFromInt(-1)
	_, err := env.svc.Create(ctx, env.owner, ProductInput{Name: "Bad", Price: &negative})
	assert.EqualError(t, err, "price must be a non-negative number")

	_, err = env.svc.Create(ctx, env.owner, ProductInput{Name: "Free"})
	assert.EqualError(t, err, "price is required")

	zero := decimal.Zero
	_, err = env.svc.Create(ctx, env.owner, ProductInput{Name: "  ", Price: &zero})
	assert.EqualError(t, err, "name is required")

	env.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e events.ProductEvent) bool {
		return e.Type == events.ProductCreated && e.ProductID == product.ID && e.Name == "Widget"
	}))
}

func TestProductService_UpdatePartial(t *testing.T) {
	env := newProductEnv(t)
	ctx := context.Background()
	product := env.create(t, env.owner, "Widget", "9.99")

	time.Sleep(10 * time.Millisecond)
	price := decimal.RequireFromString("12.50")
	updated, err := env.svc.Update(ctx, env.owner, product.ID, model.ProductPatch{Price: &price})
	require.NoError(t, err)

	assert.Equal(t, "Widget", updated.Name)
	assert.Equal(t, "original", updated.Description)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, env.owner.ID, updated.CreatedBy)
	assert.True(t, updated.UpdatedAt.After(product.UpdatedAt), "updated_at must be refreshed")

	stored, err := env.svc.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", stored.Name)
	assert.True(t, price.Equal(stored.Price))
}

func TestProductService_UpdateValidation(t *testing.T) {
	env := newProductEnv(t)
	product := env.create(t, env.owner, "Widget", "9.99")

	empty := ""
	_, err := env.svc.Update(context.Background(), env.owner, product.ID, model.ProductPatch{Name: &empty})
	assert.EqualError(t, err, "name cannot be empty")
}

func TestProductService_Authorization(t *testing.T) {
	env := newProductEnv(t)
	ctx := context.Background()
	name := "Hijacked"

	product := env.create(t, env.owner, "Widget", "9.99")

	_, err := env.svc.Update(ctx, env.stranger, product.ID, model.ProductPatch{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrUpdateForbidden)
	err = env.svc.Delete(ctx, env.stranger, product.ID)
	assert.ErrorIs(t, err, apperrors.ErrDeleteForbidden)

	stored, err := env.svc.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", stored.Name, "no mutation before authorization passes")

	updated, err := env.svc.Update(ctx, env.admin, product.ID, model.ProductPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Hijacked", updated.Name)
	assert.Equal(t, env.owner.ID, updated.CreatedBy, "ownership never transfers")

	require.NoError(t, env.svc.Delete(ctx, env.admin, product.ID))
}

func TestProductService_DeleteThenGet(t *testing.T) {
	env := newProductEnv(t)
	ctx := context.Background()
	product := env.create(t, env.owner, "Widget", "9.99")

	require.NoError(t, env.svc.Delete(ctx, env.owner, product.ID))

	_, err := env.svc.Get(ctx, product.ID)
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
	assert.ErrorIs(t, env.svc.Delete(ctx, env.owner, product.ID), apperrors.ErrProductNotFound)

	price := decimal.NewFromInt(1)
	_, err = env.svc.Update(ctx, env.owner, product.ID, model.ProductPatch{Price: &price})
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)

	env.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e events.ProductEvent) bool {
		return e.Type == events.ProductDeleted && e.ProductID == product.ID && e.ActorID == env.owner.ID
	}))
}

func TestProductService_List(t *testing.T) {
	env := newProductEnv(t)

	products, err := env.svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	env.create(t, env.owner, "A", "1")
	env.create(t, env.stranger, "B", "2")

	products, err = env.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "A", products[0].Name)
	assert.Equal(t, "B", products[1].Name)
}

func TestProductService_PublishFailureDoesNotFailRequest(t *testing.T) {
	env := newProductEnv(t)
	failing := new(MockPublisher)
	failing.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError)
	svc := NewProductService(repository.NewProductRepository(env.db), nil, failing)

	price := decimal.NewFromInt(3)
	product, err := svc.Create(context.Background(), env.owner, ProductInput{Name: "Widget", Price: &price})
	require.NoError(t, err)
	assert.NotZero(t, product.ID)
	failing.AssertNumberOfCalls(t, "Publish", 1)
}

func TestSeedAdmin_IsIdempotent(t *testing.T) {
	env := newProductEnv(t)
	users := NewUserService(repository.NewUserRepository(env.db), auth.NewBcryptHasher(4))
	ctx := context.Background()

	created, err := SeedAdmin(ctx, users, "admin", "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = SeedAdmin(ctx, users, "admin", "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.True(t, users.Verify(admin, "admin123"))
}
