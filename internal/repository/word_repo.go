package repository

import (
	"math/rand/v2"

	"spellstreak/internal/database"
)

// WordRepository serves the seeded word bank. It implements
// match.WordSource.
type WordRepository struct {
	db *database.DB
}

// NewWordRepository creates a new word repository.
func NewWordRepository(db *database.DB) *WordRepository {
	return &WordRepository{db: db}
}

// RandomWords returns n words drawn at random from the bank at the given
// difficulty. Selection happens in Go so the query stays portable across
// dialects (RANDOM() vs RAND()).
func (r *WordRepository) RandomWords(difficulty, n int) ([]string, error) {
	rows, err := r.db.Query("SELECT word FROM words WHERE difficulty = ?", difficulty)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, nil
	}

	rand.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})
	if n < len(words) {
		words = words[:n]
	}
	return words, nil
}

// Count returns the total number of words in the bank.
func (r *WordRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM words").Scan(&count)
	return count, err
}
