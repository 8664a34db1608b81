package models

// Box bounds for the Leitner scheduler. Box 0 holds words that were just
// missed (or new and wrong); MaxBox means mastered.
const (
	MinBox = 0
	MaxBox = 4
)

// MaxMisspellings bounds the per-word list of prior incorrect submissions.
const MaxMisspellings = 5

// WordRecord tracks the spaced-repetition state for one distinct word.
// Timestamps are milliseconds since the Unix epoch.
type WordRecord struct {
	Word         string   `json:"word"`
	Category     string   `json:"category"`
	Attempts     int      `json:"attempts"`
	Correct      int      `json:"correct"`
	LastSeen     int64    `json:"lastSeen"`
	LastCorrect  int64    `json:"lastCorrect,omitempty"`
	Box          int      `json:"box"`
	NextReview   int64    `json:"nextReview"`
	Misspellings []string `json:"misspellings,omitempty"`
}

// Accuracy returns the fraction of correct attempts, 0 when nothing
// has been attempted yet.
func (r *WordRecord) Accuracy() float64 {
	if r.Attempts == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Attempts)
}

// Mastered reports whether the word has reached the top box.
func (r *WordRecord) Mastered() bool {
	return r.Box >= MaxBox
}

// WordAttempt is one recorded answer, kept in a bounded log for analytics.
type WordAttempt struct {
	Word           string `json:"word"`
	Category       string `json:"category"`
	Correct        bool   `json:"correct"`
	ResponseTimeMs int64  `json:"responseTimeMs"`
	Typed          string `json:"typed,omitempty"`
	AttemptedAt    int64  `json:"attemptedAt"`
}

// CategoryStat aggregates accuracy for one practice category.
type CategoryStat struct {
	Category string  `json:"category"`
	Attempts int     `json:"attempts"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}
