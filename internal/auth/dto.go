package auth

import (
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
)

// LoginRequest accepts either the email or the username as identifier.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest carries the new account details.
type RegisterRequest struct {
	Email    string    `json:"email" validate:"required,email"`
	Username string    `json:"username" validate:"required,min=3,max=50"`
	Password string    `json:"password" validate:"required,password"`
	FullName i18n.Text `json:"full_name"`
	Phone    *string   `json:"phone,omitempty" validate:"omitempty,phone"`
	Address  i18n.Text `json:"address"`
}

// RefreshRequest carries the refresh token issued at login.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is the access/refresh pair returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// LoginResult bundles the issued tokens with the authenticated user.
type LoginResult struct {
	Tokens TokenPair
	User   *models.User
}
