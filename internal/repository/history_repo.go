package repository

import (
	"database/sql"
	"errors"

	"spellstreak/internal/database"
)

// HistoryRepository persists word-history snapshots, one row per player.
// It implements review.Store.
type HistoryRepository struct {
	db *database.DB
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *database.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Get returns the stored snapshot for key, reporting absence via the bool.
func (r *HistoryRepository) Get(key string) ([]byte, bool, error) {
	var snapshot string
	err := r.db.QueryRow("SELECT snapshot FROM word_histories WHERE player_uid = ?", key).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(snapshot), true, nil
}

// Set upserts the snapshot for key. Update-then-insert inside one
// transaction keeps the query portable across all three dialects.
func (r *HistoryRepository) Set(key string, value []byte) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"UPDATE word_histories SET snapshot = ?, updated_at = CURRENT_TIMESTAMP WHERE player_uid = ?",
		string(value), key,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := tx.Exec(
			"INSERT INTO word_histories (player_uid, snapshot) VALUES (?, ?)",
			key, string(value),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}
