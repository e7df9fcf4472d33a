package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
)

// UserView is the localized transport shape that omits credentials.
type UserView struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Username    string         `json:"username"`
	FullName    string         `json:"full_name"`
	Phone       *string        `json:"phone,omitempty"`
	Address     string         `json:"address,omitempty"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	Username     string
	PasswordHash string
	FullName     i18n.Text
	Phone        *string
	Address      i18n.Text
	IsAdmin      bool
}

// UpdateProfileRequest is a partial profile update; nil fields are left alone.
type UpdateProfileRequest struct {
	Email    *string    `json:"email,omitempty" validate:"omitempty,email"`
	FullName *i18n.Text `json:"full_name,omitempty"`
	Phone    *string    `json:"phone,omitempty" validate:"omitempty,phone"`
	Address  *i18n.Text `json:"address,omitempty"`
}

// Localize projects a user into the requested language.
func Localize(u *models.User, lang enums.Language) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FullName:    u.FullName.In(lang),
		Phone:       u.Phone,
		Address:     u.Address.In(lang),
		Role:        u.Role(),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        NormalizeEmail(c.Email),
		Username:     strings.TrimSpace(c.Username),
		PasswordHash: c.PasswordHash,
		FullName:     c.FullName,
		Phone:        c.Phone,
		Address:      c.Address,
		IsActive:     true,
		IsAdmin:      c.IsAdmin,
	}
}
