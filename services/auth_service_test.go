package services

import (
	"context"
	"testing"

	"github.com/kendall-kelly/tailor-shop-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginCreatesOwnerOnFirstUse(t *testing.T) {
	db, _ := setupShop(t)
	svc := NewAuthService(db, nop)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Username: "newshop", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.NotEqual(t, "pw", res.Owner.Password, "passwords are stored hashed")

	again, err := svc.Login(ctx, LoginInput{Username: "newshop", Password: "pw"})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, res.Owner.ID, again.Owner.ID)
}

func TestLoginFailures(t *testing.T) {
	db, _ := setupShop(t)
	svc := NewAuthService(db, nop)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{Username: "tailor", Password: "wrong"})
	se := requireKind(t, err, KindUnauthenticated)
	assert.Equal(t, "Incorrect password", se.Message)

	_, err = svc.Login(ctx, LoginInput{Username: "  ", Password: "pw"})
	se = requireKind(t, err, KindMissingField)
	assert.Equal(t, "Username and password are required", se.Message)

	_, err = svc.Login(ctx, LoginInput{Username: "tailor"})
	requireKind(t, err, KindMissingField)
}

func TestSavedCredentialsLifecycle(t *testing.T) {
	db, owner := setupShop(t)
	svc := NewAuthService(db, nop)
	ctx := context.Background()

	creds, err := svc.SavedCredentials(ctx, "tailor")
	require.NoError(t, err)
	assert.False(t, creds.HasSavedCredentials)

	_, err = svc.Login(ctx, LoginInput{Username: "tailor", Password: "secret", SaveCredentials: true})
	require.NoError(t, err)

	creds, err = svc.SavedCredentials(ctx, "tailor")
	require.NoError(t, err)
	assert.Equal(t, SavedCredentials{HasSavedCredentials: true, SavedUsername: "tailor"}, *creds)

	// Remembered owners keep their username across logout
	require.NoError(t, svc.Logout(ctx, owner.ID))
	creds, err = svc.SavedCredentials(ctx, "tailor")
	require.NoError(t, err)
	assert.True(t, creds.HasSavedCredentials)

	_, err = svc.Login(ctx, LoginInput{Username: "tailor", Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, owner.ID))

	var stored models.Owner
	require.NoError(t, db.First(&stored, "id = ?", owner.ID).Error)
	assert.False(t, stored.SaveCredentials)
	assert.Nil(t, stored.SavedUsername)

	creds, err = svc.SavedCredentials(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, creds.HasSavedCredentials)
}

func TestOwnerForSubject(t *testing.T) {
	db, owner := setupShop(t)
	svc := NewAuthService(db, nop)
	ctx := context.Background()

	first, err := svc.OwnerForSubject(ctx, "auth0|abc")
	require.NoError(t, err)
	assert.NotEqual(t, owner.ID, first.ID)

	second, err := svc.OwnerForSubject(ctx, "auth0|abc")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// Token-provisioned owners cannot log in with a password
	_, err = svc.Login(ctx, LoginInput{Username: "auth0|abc", Password: ""})
	requireKind(t, err, KindMissingField)
	_, err = svc.Login(ctx, LoginInput{Username: "auth0|abc", Password: "guess"})
	requireKind(t, err, KindUnauthenticated)

	_, err = svc.OwnerForSubject(ctx, "")
	requireKind(t, err, KindUnauthenticated)

	exists, err := svc.OwnerExists(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = svc.OwnerExists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, exists)
}
