package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"spellstreak/internal/models"
	"spellstreak/internal/names"
	"spellstreak/internal/repository"
	"spellstreak/internal/security"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService handles player registration and login. It is the identity
// provider for the rest of the system: a stable opaque UID plus a
// display name, carried in a bearer token.
type AuthService struct {
	playerRepo *repository.PlayerRepository
	tokens     *security.TokenManager
}

// NewAuthService creates a new auth service.
func NewAuthService(playerRepo *repository.PlayerRepository, tokens *security.TokenManager) *AuthService {
	return &AuthService{playerRepo: playerRepo, tokens: tokens}
}

// Register creates a new player account and returns it with a signed
// bearer token. An empty display name gets a generated one.
func (s *AuthService) Register(email, password, displayName string) (*models.Player, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		generated, err := names.RandomDisplayName()
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate display name: %w", err)
		}
		displayName = generated
	}

	if _, err := s.playerRepo.GetByEmail(email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrPlayerNotFound) {
		return nil, "", fmt.Errorf("failed to check existing player: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	player := &models.Player{
		UID:          uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}
	if err := s.playerRepo.Create(player); err != nil {
		return nil, "", fmt.Errorf("failed to create player: %w", err)
	}

	token, err := s.tokens.Issue(player.UID, player.DisplayName)
	if err != nil {
		return nil, "", err
	}
	return player, token, nil
}

// Login authenticates a player and returns a fresh bearer token.
func (s *AuthService) Login(email, password string) (*models.Player, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	player, err := s.playerRepo.GetByEmail(email)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up player: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(player.UID, player.DisplayName)
	if err != nil {
		return nil, "", err
	}
	return player, token, nil
}

// Verify validates a bearer token and returns its identity claims.
func (s *AuthService) Verify(token string) (*security.Claims, error) {
	return s.tokens.Verify(token)
}
