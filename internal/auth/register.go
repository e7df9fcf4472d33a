package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/hadeeqati/hadeeqati-backend/internal/users"
	"github.com/hadeeqati/hadeeqati-backend/pkg/config"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/security"
)

const (
	emailTakenMessage    = users.EmailTakenMessage
	usernameTakenMessage = "Username already taken"
)

// RegisterService handles account creation.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	RegisterAdmin(ctx context.Context, req RegisterRequest) (*models.User, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	return s.create(ctx, req, false)
}

// RegisterAdmin creates an administrator. Routes expose it outside production only.
func (s *registerService) RegisterAdmin(ctx context.Context, req RegisterRequest) (*models.User, error) {
	return s.create(ctx, req, true)
}

func (s *registerService) create(ctx context.Context, req RegisterRequest, isAdmin bool) (*models.User, error) {
	email := users.NormalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	fields := map[string]string{}
	if email == "" {
		fields["email"] = "is required"
	}
	if username == "" {
		fields["username"] = "is required"
	}
	if err := security.CheckPasswordStrength(req.Password); err != nil {
		fields["password"] = err.Error()
	}
	if len(fields) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(fields)
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}
		if _, err := userRepo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, usernameTakenMessage)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			Username:     username,
			PasswordHash: passwordHash,
			FullName:     req.FullName,
			Phone:        req.Phone,
			Address:      req.Address,
			IsAdmin:      isAdmin,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "account already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
