package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/pkg/auth"
)

func newAuthFixture() (*AuthService, *fakeUsers, *fakeRoles) {
	users := newFakeUsers()
	roles := newFakeRoles()
	return &AuthService{users: users, roles: roles}, users, roles
}

func TestSignup(t *testing.T) {
	svc, users, roles := newAuthFixture()

	user, err := svc.Signup(context.Background(), SignupInput{
		Name:                 "Ana",
		Email:                "ana@example.com",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
		Mobile:               "555-0101",
	})
	require.NoError(t, err)

	assert.False(t, user.ID.IsZero())
	assert.Equal(t, models.ProfileIncomplete, user.ProfileState)
	assert.NotEmpty(t, user.EmailToken)
	assert.NotEqual(t, "secret123", user.Password, "password is stored hashed")
	assert.True(t, auth.CheckPassword(user.Password, "secret123"))

	userRole := roles.m[models.RoleUser]
	require.Len(t, user.Roles, 1)
	assert.Equal(t, userRole.ID, user.Roles[0])
	assert.Len(t, users.m, 1)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, users, _ := newAuthFixture()
	users.add(&models.User{Name: "Ana", Email: "ana@example.com"})

	_, err := svc.Signup(context.Background(), SignupInput{
		Name:                 "Other Ana",
		Email:                "ana@example.com",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	})
	assert.Equal(t, 409, apperr.Status(err))
	assert.Len(t, users.m, 1)
}

func TestLogin(t *testing.T) {
	svc, users, roles := newAuthFixture()

	hashed, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	adminRole := roles.m[models.RoleAdmin]
	users.add(&models.User{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: hashed,
		Roles:    []primitive.ObjectID{adminRole.ID},
	})

	pair, err := svc.Login(context.Background(), LoginInput{
		Email:    "ana@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Token)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "ana@example.com", pair.User.Email)

	claims, err := auth.ValidateToken(pair.Token)
	require.NoError(t, err)
	assert.Equal(t, pair.User.ID.Hex(), claims.UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, users, _ := newAuthFixture()

	hashed, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	users.add(&models.User{Email: "ana@example.com", Password: hashed})
	ctx := context.Background()

	_, err = svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "wrong"})
	assert.Equal(t, 401, apperr.Status(err))

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret123"})
	assert.Equal(t, 401, apperr.Status(err), "unknown accounts get the same answer as bad passwords")
}

func TestSessionFor(t *testing.T) {
	svc, users, roles := newAuthFixture()

	modRole := roles.m[models.RoleModerator]
	user := users.add(&models.User{
		Name:  "Ana",
		Email: "ana@example.com",
	})
	user.Roles = append(user.Roles, modRole.ID)

	session, err := svc.SessionFor(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)
	assert.Equal(t, []string{models.RoleModerator}, session.Roles)
}

func TestSubscribe(t *testing.T) {
	svc, users, _ := newAuthFixture()
	user := users.add(&models.User{Email: "ana@example.com"})

	require.NoError(t, svc.Subscribe(context.Background(), SubscribeInput{Email: "ana@example.com"}))
	assert.True(t, user.Subscribed)

	err := svc.Subscribe(context.Background(), SubscribeInput{Email: "nobody@example.com"})
	assert.Equal(t, 404, apperr.Status(err))
}
