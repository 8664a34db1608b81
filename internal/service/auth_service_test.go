package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spellstreak/internal/database"
	"spellstreak/internal/repository"
	"spellstreak/internal/security"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	tokens := security.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(repository.NewPlayerRepository(db), tokens)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newAuthService(t)

	player, token, err := s.Register("Ada@Example.com", "correct horse", "Ada")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if player.Email != "ada@example.com" {
		t.Errorf("email = %q, want normalized lowercase", player.Email)
	}
	if player.UID == "" || token == "" {
		t.Error("Register() returned empty uid or token")
	}

	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UID != player.UID {
		t.Errorf("token uid = %q, want %q", claims.UID, player.UID)
	}

	back, _, err := s.Login("ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if back.UID != player.UID {
		t.Errorf("Login() uid = %q, want %q", back.UID, player.UID)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s := newAuthService(t)

	if _, _, err := s.Register("ada@example.com", "password one", "Ada"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Register("ADA@example.com", "password two", "Imposter"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterGeneratesMissingDisplayName(t *testing.T) {
	s := newAuthService(t)

	player, _, err := s.Register("ada@example.com", "correct horse", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if player.DisplayName == "" {
		t.Error("blank display name was not replaced")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newAuthService(t)
	if _, _, err := s.Register("ada@example.com", "correct horse", "Ada"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "ada@example.com", "wrong"},
		{"unknown email", "nobody@example.com", "correct horse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := s.Login(tt.email, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}
