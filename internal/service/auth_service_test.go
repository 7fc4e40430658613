package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bookvault-next/internal/config"
	"github.com/bookvault-next/internal/constants"
	"github.com/bookvault-next/internal/models"
	"github.com/bookvault-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:             "auth-service-test-secret",
			ExpireHours:           24,
			RememberMeExpireHours: 168,
		},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{
				MinLength:     8,
				RequireNumber: true,
			},
		},
	}
	return NewAuthService(cfg, repository.NewUserRepository(db)), db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	user, token, expiresAt, err := svc.Register(RegisterInput{
		Email:     "  Reader@Example.com ",
		Password:  "sturdy-pass-1",
		FirstName: "Ivan",
		LastName:  "Petrov",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "reader@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.Status != constants.UserStatusActive {
		t.Fatalf("expected active status, got %s", user.Status)
	}
	if token == "" || !expiresAt.After(time.Now()) {
		t.Fatalf("expected a valid token with future expiry")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email || claims.IsAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}

	logged, _, _, err := svc.Login("reader@example.com", "sturdy-pass-1", false)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, logged.ID)
	}
	if logged.LastLoginAt == nil {
		t.Fatalf("expected last login timestamp to be set")
	}

	if _, _, _, err := svc.Login("reader@example.com", "wrong-pass-1", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login("nobody@example.com", "sturdy-pass-1", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	input := RegisterInput{Email: "reader@example.com", Password: "sturdy-pass-1"}
	if _, _, _, err := svc.Register(input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	input.Email = "READER@example.com"
	if _, _, _, err := svc.Register(input); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	cases := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"invalid email", "not-an-email", "sturdy-pass-1", ErrInvalidEmail},
		{"too short", "reader@example.com", "short-1", ErrWeakPassword},
		{"missing digit", "reader@example.com", "sturdy-pass", ErrWeakPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := svc.Register(RegisterInput{Email: tc.email, Password: tc.password})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRegisterDerivesNameFromEmail(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	user, _, _, err := svc.Register(RegisterInput{Email: "bookworm@example.com", Password: "sturdy-pass-1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.FirstName != "bookworm" {
		t.Fatalf("expected first name derived from email, got %q", user.FirstName)
	}
}

func TestLoginRejectsDisabledUser(t *testing.T) {
	svc, db := setupAuthServiceTest(t)

	user, _, _, err := svc.Register(RegisterInput{Email: "reader@example.com", Password: "sturdy-pass-1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}

	if _, _, _, err := svc.Login("reader@example.com", "sturdy-pass-1", false); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	user, _, _, err := svc.Register(RegisterInput{Email: "reader@example.com", Password: "sturdy-pass-1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(user.ID, "wrong-old", "another-pass-2"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "sturdy-pass-1", "weak"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "sturdy-pass-1", "another-pass-2"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, _, _, err := svc.Login("reader@example.com", "sturdy-pass-1", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password to stop working, got %v", err)
	}
	if _, _, _, err := svc.Login("reader@example.com", "another-pass-2", false); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	user, _, _, err := svc.Register(RegisterInput{Email: "reader@example.com", Password: "sturdy-pass-1", FirstName: "Ivan"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.UpdateProfile(user.ID, nil, nil); !errors.Is(err, ErrProfileEmpty) {
		t.Fatalf("expected ErrProfileEmpty, got %v", err)
	}

	first := "Pyotr"
	last := "Ivanov"
	updated, err := svc.UpdateProfile(user.ID, &first, &last)
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.FirstName != "Pyotr" || updated.LastName != "Ivanov" {
		t.Fatalf("unexpected profile %q %q", updated.FirstName, updated.LastName)
	}

	if _, err := svc.UpdateProfile(9999, &first, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
