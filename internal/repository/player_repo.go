package repository

import (
	"database/sql"
	"errors"

	"spellstreak/internal/database"
	"spellstreak/internal/models"
)

// ErrPlayerNotFound is returned when no player matches the lookup.
var ErrPlayerNotFound = errors.New("player not found")

// PlayerRepository handles player account database operations.
type PlayerRepository struct {
	db *database.DB
}

// NewPlayerRepository creates a new player repository.
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Create inserts a new player account.
func (r *PlayerRepository) Create(player *models.Player) error {
	query := `
		INSERT INTO players (uid, email, display_name, password_hash)
		VALUES (?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query, player.UID, player.Email, player.DisplayName, player.PasswordHash)
	if err != nil {
		return err
	}
	player.ID = id
	return nil
}

// GetByEmail retrieves a player by email.
func (r *PlayerRepository) GetByEmail(email string) (*models.Player, error) {
	return r.getBy("email", email)
}

// GetByUID retrieves a player by its opaque identity string.
func (r *PlayerRepository) GetByUID(uid string) (*models.Player, error) {
	return r.getBy("uid", uid)
}

func (r *PlayerRepository) getBy(column, value string) (*models.Player, error) {
	query := `
		SELECT id, uid, email, display_name, password_hash, created_at
		FROM players
		WHERE ` + column + ` = ?
	`

	player := &models.Player{}
	err := r.db.QueryRow(query, value).Scan(
		&player.ID,
		&player.UID,
		&player.Email,
		&player.DisplayName,
		&player.PasswordHash,
		&player.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return player, nil
}
