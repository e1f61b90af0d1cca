package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/app/jobs"
	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/app/repositories"
	"github.com/shashiranjanraj/feria/pkg/auth"
	"github.com/shashiranjanraj/feria/pkg/logger"
	"github.com/shashiranjanraj/feria/pkg/queue"
)

// SignupInput is the request body of POST /api/auth/signup.
type SignupInput struct {
	Name                 string `json:"name" validate:"required,min=2,max=100"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=6,confirmed"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
	Mobile               string `json:"mobile" validate:"nullable,min=7,max=20"`
}

// LoginInput is the request body of POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SubscribeInput is the request body of POST /api/newsletter/subscribe.
type SubscribeInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ContactInput is the request body of POST /api/contact.
type ContactInput struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Session describes the authenticated caller.
type Session struct {
	User  models.User `json:"user"`
	Roles []string    `json:"roles"`
}

// TokenPair is issued on login.
type TokenPair struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

// AuthService handles signup, login and account-adjacent requests.
type AuthService struct {
	users userRepo
	roles roleRepo
}

func NewAuthService() *AuthService {
	return &AuthService{
		users: repositories.NewUserRepository(),
		roles: repositories.NewRoleRepository(),
	}
}

// Signup registers a new account with the default role and queues the
// welcome mail.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (models.User, error) {
	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return models.User{}, apperr.Conflictf("email %s is already registered", input.Email)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return models.User{}, err
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	role, err := s.roles.FindByName(ctx, models.RoleUser)
	if err != nil {
		return models.User{}, err
	}

	user := models.NewUser(input.Name, input.Email, hashed, input.Mobile, randomToken())
	user.Roles = append(user.Roles, role.ID)

	if err := s.users.Insert(ctx, user); err != nil {
		return models.User{}, err
	}

	if err := queue.Dispatch(&jobs.WelcomeMailJob{
		Email:    user.Email,
		UserName: user.Name,
		Token:    user.EmailToken,
	}); err != nil {
		logger.Warn("auth: welcome mail dispatch failed", "error", err)
	}

	logger.Info("user signed up", "user_id", user.ID.Hex())
	return *user, nil
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return TokenPair{}, apperr.Unauthorizedf("invalid credentials")
		}
		return TokenPair{}, err
	}
	if !auth.CheckPassword(user.Password, input.Password) {
		return TokenPair{}, apperr.Unauthorizedf("invalid credentials")
	}

	roleName, err := s.primaryRole(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}

	token, err := auth.GenerateToken(user.ID.Hex(), roleName)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := auth.GenerateRefreshToken(user.ID.Hex(), roleName)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Token: token, RefreshToken: refresh, User: user}, nil
}

// SessionFor resolves the authenticated user and their role names.
func (s *AuthService) SessionFor(ctx context.Context, userID string) (Session, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return Session{}, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	roles, err := s.roles.FindByIDs(ctx, user.Roles)
	if err != nil {
		return Session{}, err
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return Session{User: user, Roles: names}, nil
}

// Subscribe flips the newsletter flag for the given email.
func (s *AuthService) Subscribe(ctx context.Context, input SubscribeInput) error {
	return s.users.SetSubscribed(ctx, input.Email, true)
}

// Contact queues a contact form submission for delivery.
func (s *AuthService) Contact(_ context.Context, input ContactInput) error {
	return queue.Dispatch(&jobs.ContactMailJob{
		UserName: input.Name,
		Email:    input.Email,
		Message:  input.Message,
	})
}

// primaryRole picks the highest-privilege role name for the token claim.
func (s *AuthService) primaryRole(ctx context.Context, user models.User) (string, error) {
	roles, err := s.roles.FindByIDs(ctx, user.Roles)
	if err != nil {
		return "", err
	}
	name := models.RoleUser
	for _, role := range roles {
		switch role.Name {
		case models.RoleAdmin:
			return models.RoleAdmin, nil
		case models.RoleModerator:
			name = models.RoleModerator
		}
	}
	return name, nil
}

func randomToken() string {
	buf := make([]byte, 20)
	rand.Read(buf) //nolint:errcheck
	return hex.EncodeToString(buf)
}
