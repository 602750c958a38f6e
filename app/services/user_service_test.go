package services

import (
	"context"
	"testing"

	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/app/repositories"
	"github.com/saydalia/saydalia/pkg/apperr"
	"github.com/saydalia/saydalia/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserServiceGetStripsPassword(t *testing.T) {
	users := repositories.NewMemoryUserRepository()
	ctx := context.Background()

	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	u := models.User{Name: "سارة", Email: "sara@example.com", Password: hash, Role: models.RoleUser}
	require.NoError(t, users.Create(ctx, &u))

	got, err := NewUserService(users).Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "سارة", got.Name)
	assert.Empty(t, got.Password)
}

func TestUserServiceUpdateProfile(t *testing.T) {
	users := repositories.NewMemoryUserRepository()
	ctx := context.Background()

	hash, err := auth.HashPassword("old-secret")
	require.NoError(t, err)
	u := models.User{Name: "سارة", Email: "sara@example.com", Password: hash, Role: models.RoleUser}
	require.NoError(t, users.Create(ctx, &u))

	svc := NewUserService(users)
	updated, err := svc.UpdateProfile(ctx, u.ID, u, ProfileInput{
		Name: "سارة المحدثة", Phone: "0503333333", Password: "new-secret",
	})
	require.NoError(t, err)

	assert.Equal(t, "سارة المحدثة", updated.Name)
	assert.Equal(t, "0503333333", updated.Phone)
	assert.Empty(t, updated.Password)

	stored, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(stored.Password, "new-secret"))
	assert.Equal(t, "sara@example.com", stored.Email, "untouched fields keep their values")
}

func TestUserServiceUpdateProfileForbidden(t *testing.T) {
	users := repositories.NewMemoryUserRepository()
	ctx := context.Background()

	target := models.User{Name: "سارة", Email: "sara@example.com", Role: models.RoleUser}
	require.NoError(t, users.Create(ctx, &target))
	actor := models.User{Name: "آخر", Email: "other@example.com", Role: models.RoleUser}
	require.NoError(t, users.Create(ctx, &actor))

	svc := NewUserService(users)
	_, err := svc.UpdateProfile(ctx, target.ID, actor, ProfileInput{Name: "مخترق"})
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestUserServiceUpdateProfileDuplicateEmail(t *testing.T) {
	users := repositories.NewMemoryUserRepository()
	ctx := context.Background()

	a := models.User{Name: "A", Email: "a@example.com", Role: models.RoleUser}
	require.NoError(t, users.Create(ctx, &a))
	b := models.User{Name: "B", Email: "b@example.com", Role: models.RoleUser}
	require.NoError(t, users.Create(ctx, &b))

	svc := NewUserService(users)
	_, err := svc.UpdateProfile(ctx, b.ID, b, ProfileInput{Email: "A@example.com"})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Equal(t, msgEmailTaken, apperr.MessageOf(err))
}
