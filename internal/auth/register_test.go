package auth

import (
	"context"
	"testing"

	"github.com/hadeeqati/hadeeqati-backend/internal/users"
	"github.com/hadeeqati/hadeeqati-backend/pkg/config"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/dbtest"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
	"github.com/hadeeqati/hadeeqati-backend/pkg/security"
)

func newRegisterService(t *testing.T) (RegisterService, *users.Repository) {
	t.Helper()
	client := dbtest.OpenClient(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client, PasswordConfig: config.PasswordConfig{}})
	if err != nil {
		t.Fatalf("build register service: %v", err)
	}
	return svc, users.NewRepository(client.DB())
}

func validRegisterRequest() RegisterRequest {
	return RegisterRequest{
		Email:    "Salma@Example.com",
		Username: "salma",
		Password: "Lavender77",
		FullName: i18n.NewText("Salma Ali", "سلمى علي"),
	}
}

func TestRegisterCreatesUser(t *testing.T) {
	svc, repo := newRegisterService(t)

	user, err := svc.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "salma@example.com" || user.IsAdmin {
		t.Fatalf("unexpected user %+v", user)
	}

	stored, err := repo.FindByUsername(context.Background(), "salma")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	ok, err := security.VerifyPassword("Lavender77", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
}

func TestRegisterConflicts(t *testing.T) {
	svc, _ := newRegisterService(t)
	if _, err := svc.Register(context.Background(), validRegisterRequest()); err != nil {
		t.Fatalf("register: %v", err)
	}

	sameEmail := validRegisterRequest()
	sameEmail.Username = "someone-else"
	_, err := svc.Register(context.Background(), sameEmail)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict || typed.Message() != emailTakenMessage {
		t.Fatalf("expected email conflict, got %v", err)
	}

	sameUsername := validRegisterRequest()
	sameUsername.Email = "other@example.com"
	_, err = svc.Register(context.Background(), sameUsername)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict || typed.Message() != usernameTakenMessage {
		t.Fatalf("expected username conflict, got %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, _ := newRegisterService(t)
	req := validRegisterRequest()
	req.Password = "weak"

	_, err := svc.Register(context.Background(), req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["password"] == "" {
		t.Fatalf("expected password detail, got %#v", typed.Details())
	}
}

func TestRegisterAdminSetsFlag(t *testing.T) {
	svc, _ := newRegisterService(t)
	user, err := svc.RegisterAdmin(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if !user.IsAdmin {
		t.Fatalf("expected admin flag")
	}
}
