package controllers

import (
	"github.com/shashiranjanraj/feria/app/services"
	"github.com/shashiranjanraj/feria/pkg/ctx"
	"github.com/shashiranjanraj/feria/pkg/middleware"
)

// AuthController exposes signup, login and session routes.
type AuthController struct {
	service *services.AuthService
}

func NewAuthController() *AuthController {
	return &AuthController{service: services.NewAuthService()}
}

// Signup handles POST /api/auth/signup.
func (ac *AuthController) Signup(c *ctx.Context) {
	var input services.SignupInput
	if !c.BindJSON(&input) {
		return
	}
	user, err := ac.service.Signup(c.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(user)
}

// Login handles POST /api/auth/login.
func (ac *AuthController) Login(c *ctx.Context) {
	var input services.LoginInput
	if !c.BindJSON(&input) {
		return
	}
	pair, err := ac.service.Login(c.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(pair)
}

// Session handles GET /api/auth/session.
func (ac *AuthController) Session(c *ctx.Context) {
	userID, ok := middleware.UserIDFromCtx(c.R)
	if !ok {
		c.Unauthorized()
		return
	}
	session, err := ac.service.SessionFor(c.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(session)
}

// Logout handles POST /api/auth/logout. Tokens are stateless; the client
// drops them, the server just acknowledges.
func (ac *AuthController) Logout(c *ctx.Context) {
	c.Success(map[string]string{"message": "Logged out"})
}

// Subscribe handles POST /api/newsletter/subscribe.
func (ac *AuthController) Subscribe(c *ctx.Context) {
	var input services.SubscribeInput
	if !c.BindJSON(&input) {
		return
	}
	if err := ac.service.Subscribe(c.Context(), input); err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]string{"message": "Subscribed"})
}

// Contact handles POST /api/contact.
func (ac *AuthController) Contact(c *ctx.Context) {
	var input services.ContactInput
	if !c.BindJSON(&input) {
		return
	}
	if err := ac.service.Contact(c.Context(), input); err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]string{"message": "Message sent"})
}
