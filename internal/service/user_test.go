package service

import (
	"context"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterBootstrapsAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin, err := env.users.Register(ctx, nil, &dto.RegisterRequest{
		Email:    "Owner@Shop.test",
		Name:     "Owner",
		Password: "correct horse",
		Role:     model.RoleStaff,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role, "first user is always admin")
	assert.Equal(t, "owner@shop.test", admin.Email)
	assert.NotEqual(t, "correct horse", admin.PasswordHash)

	req := &dto.RegisterRequest{Email: "clerk@shop.test", Name: "Clerk", Password: "password1"}

	_, err = env.users.Register(ctx, nil, req)
	requireKind(t, err, KindUnauthorized)

	_, err = env.users.Register(ctx, &dto.Actor{ID: "x", Role: model.RoleManager}, req)
	requireKind(t, err, KindForbidden)

	clerk, err := env.users.Register(ctx, &dto.Actor{ID: admin.ID, Role: model.RoleAdmin}, req)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, clerk.Role)

	_, err = env.users.Register(ctx, &dto.Actor{ID: admin.ID, Role: model.RoleAdmin}, req)
	requireKind(t, err, KindConflict)

	_, err = env.users.Register(ctx, &dto.Actor{ID: admin.ID, Role: model.RoleAdmin}, &dto.RegisterRequest{
		Email: "short@shop.test", Name: "Short", Password: "123",
	})
	requireKind(t, err, KindValidation)

	users, err := env.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Register(ctx, nil, &dto.RegisterRequest{
		Email: "owner@shop.test", Name: "Owner", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = env.users.Login(ctx, &dto.LoginRequest{Email: "owner@shop.test", Password: "wrong password"})
	requireKind(t, err, KindUnauthorized)
	_, err = env.users.Login(ctx, &dto.LoginRequest{Email: "nobody@shop.test", Password: "correct horse"})
	requireKind(t, err, KindUnauthorized)

	res, err := env.users.Login(ctx, &dto.LoginRequest{Email: " OWNER@shop.test", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, user.ID, res.User.ID)

	claims := &dto.AuthClaims{}
	_, err = jwt.ParseWithClaims(res.AccessToken, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.NotNil(t, claims.ExpiresAt)

	me, err := env.users.Get(ctx, claims.Subject)
	require.NoError(t, err)
	assert.Equal(t, "Owner", me.Name)
}

func TestDrivers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin, err := env.users.Register(ctx, nil, &dto.RegisterRequest{
		Email: "owner@shop.test", Name: "Owner", Password: "correct horse",
	})
	require.NoError(t, err)
	actor := &dto.Actor{ID: admin.ID, Role: model.RoleAdmin}
	_, err = env.users.Register(ctx, actor, &dto.RegisterRequest{
		Email: "driver@shop.test", Name: "Dave", Password: "password1",
	})
	require.NoError(t, err)

	drivers, err := env.users.Drivers(ctx)
	require.NoError(t, err)
	require.Len(t, drivers, 2)
	assert.Equal(t, "Dave", drivers[0].Name)
	assert.Equal(t, "Owner", drivers[1].Name)
	assert.Equal(t, admin.ID, drivers[1].ID)
}
