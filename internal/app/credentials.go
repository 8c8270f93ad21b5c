package app

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mythoughts/internal/backend"
)

type signInForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type signUpForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Credentials runs the sign-in and registration forms.
type Credentials struct {
	auth     backend.AuthService
	log      *zap.Logger
	validate *validator.Validate
}

func NewCredentials(auth backend.AuthService, log *zap.Logger) *Credentials {
	return &Credentials{auth: auth, log: log, validate: validator.New()}
}

// SignIn requires both fields. A successful sign-in is reported to the
// session through the auth service's identity callback.
func (c *Credentials) SignIn(ctx context.Context, email, password string) (backend.Identity, error) {
	form := signInForm{Email: strings.TrimSpace(email), Password: password}
	if err := c.validate.Struct(form); err != nil {
		return backend.Identity{}, &ValidationError{Field: firstField(err), Message: "Please enter email and password"}
	}
	id, err := c.auth.SignIn(ctx, form.Email, form.Password)
	if err != nil {
		c.log.Info("login failed", zap.String("email", form.Email), zap.Error(err))
		return backend.Identity{}, backendErr("Login failed", err)
	}
	return id, nil
}

// SignUp validates the address and a password of at least six characters,
// creates the account and signs out again so the user logs in explicitly.
func (c *Credentials) SignUp(ctx context.Context, email, password string) error {
	form := signUpForm{Email: strings.TrimSpace(email), Password: password}
	if err := c.validate.Struct(form); err != nil {
		field := firstField(err)
		msg := "Invalid email"
		if field == "Password" {
			msg = "Password should be at least 6 characters"
		}
		return &ValidationError{Field: field, Message: msg}
	}
	if _, err := c.auth.SignUp(ctx, form.Email, form.Password); err != nil {
		c.log.Info("registration failed", zap.String("email", form.Email), zap.Error(err))
		return backendErr("Registration failed", err)
	}
	if err := c.auth.SignOut(ctx); err != nil {
		c.log.Warn("sign out after registration failed", zap.Error(err))
	}
	return nil
}

// SignOut ends the session. The session gate reacts to the identity change.
func (c *Credentials) SignOut(ctx context.Context) error {
	return backendErr("Logout failed", c.auth.SignOut(ctx))
}

func firstField(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field()
	}
	return ""
}
