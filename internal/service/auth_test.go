package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, RegisterInput{Email: "Ana@Example.com", Password: "secret123", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.True(t, u.IsActive)

	_, err = f.svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "other123", Name: "Ana"})
	assert.ErrorIs(t, err, ErrConflict)

	resp, err := f.svc.Login(ctx, LoginInput{Email: "ANA@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)

	claims, err := f.svc.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)

	_, err = f.svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "123", Name: "A"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be a valid email address", verr.Fields["email"])
	assert.Equal(t, "must be at least 6 characters long", verr.Fields["password"])
	assert.Equal(t, "must be at least 2 characters long", verr.Fields["name"])
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "bob@example.com")

	token, err := f.svc.IssueToken(u)
	require.NoError(t, err)

	got, err := f.svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.svc.Authenticate(ctx, token+"x")
	assert.ErrorIs(t, err, ErrUnauthorized)

	u.IsActive = false
	require.NoError(t, f.store.UpdateUser(ctx, u))
	_, err = f.svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Login(ctx, LoginInput{Email: "bob@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	f.now = f.now.Add(2 * time.Hour)
	_, err = f.svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestProfileAndPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "carla@example.com")

	name := "Carla Souza"
	updated, err := f.svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Carla Souza", updated.Name)
	assert.Nil(t, updated.AvatarURL)

	err = f.svc.ChangePassword(ctx, u.ID, ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "newsecret"})
	requireField(t, err, "current_password")

	require.NoError(t, f.svc.ChangePassword(ctx, u.ID, ChangePasswordInput{CurrentPassword: "secret123", NewPassword: "newsecret"}))
	_, err = f.svc.Login(ctx, LoginInput{Email: "carla@example.com", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestDeleteUserCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "dan@example.com")
	a := f.account(t, u.ID, "100")

	require.NoError(t, f.svc.DeleteUser(ctx, u.ID))
	_, err := f.store.GetAccount(ctx, a.ID, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
