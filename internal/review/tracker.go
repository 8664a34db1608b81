// Package review implements the Leitner-box word history tracker: one
// record per distinct word attempted, promoted or demoted on every
// attempt, with a sorted index answering "what is due for review" in
// better than linear time.
package review

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"spellstreak/internal/clock"
	"spellstreak/internal/models"
)

const dayMs = 24 * 60 * 60 * 1000

// boxDelaysMs maps a box to the delay before the word comes due again.
var boxDelaysMs = [models.MaxBox + 1]int64{0, dayMs, 3 * dayMs, 7 * dayMs, 14 * dayMs}

// maxRecentAttempts bounds the analytics log of raw attempts.
const maxRecentAttempts = 200

// indexEntry is one element of the review index, kept sorted by
// NextReview ascending.
type indexEntry struct {
	word       string
	nextReview int64
	box        int
}

// Tracker holds one player's word history. It is not safe for concurrent
// use; callers serialize access (all mutation flows through one
// interaction path per player).
type Tracker struct {
	key     string
	clock   clock.Clock
	store   Store
	records map[string]*models.WordRecord
	recent  []models.WordAttempt
	index   []indexEntry
}

// snapshot is the persisted form of a Tracker. The index is derived
// state and is rebuilt on load rather than stored.
type snapshot struct {
	Records map[string]*models.WordRecord `json:"records"`
	Recent  []models.WordAttempt          `json:"recent"`
}

// NewTracker loads the history stored under key, treating missing or
// malformed data as empty history.
func NewTracker(key string, clk clock.Clock, store Store) *Tracker {
	t := &Tracker{
		key:     key,
		clock:   clk,
		store:   store,
		records: make(map[string]*models.WordRecord),
	}
	t.load()
	return t
}

func (t *Tracker) load() {
	raw, ok, err := t.store.Get(t.key)
	if err != nil {
		slog.Warn("review: load failed, starting empty", "key", t.key, "error", err)
		return
	}
	if !ok {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		slog.Warn("review: corrupt history, starting empty", "key", t.key, "error", err)
		return
	}
	if snap.Records != nil {
		t.records = snap.Records
	}
	t.recent = snap.Recent
	t.rebuildIndex()
}

// rebuildIndex derives the sorted review index from the record map.
func (t *Tracker) rebuildIndex() {
	t.index = t.index[:0]
	for word, rec := range t.records {
		t.index = append(t.index, indexEntry{word: word, nextReview: rec.NextReview, box: rec.Box})
	}
	sort.Slice(t.index, func(i, j int) bool {
		if t.index[i].nextReview != t.index[j].nextReview {
			return t.index[i].nextReview < t.index[j].nextReview
		}
		return t.index[i].word < t.index[j].word
	})
}

// RecordAttempt records one answer for word and returns the updated
// record. A correct answer promotes the word one box (saturating at the
// top); an incorrect answer demotes it to box 0 and, when typed is
// non-empty, remembers the misspelling. The whole aggregate is persisted
// after every call; a failed write degrades to in-memory state only.
func (t *Tracker) RecordAttempt(word, category string, correct bool, responseTimeMs int64, typed string) *models.WordRecord {
	key := strings.ToLower(strings.TrimSpace(word))
	typed = strings.ToLower(strings.TrimSpace(typed))
	now := t.clock.Now().UnixMilli()

	rec, exists := t.records[key]
	if !exists {
		rec = &models.WordRecord{Word: key, Category: category}
		t.records[key] = rec
	}

	newBox := 0
	if correct {
		if exists {
			newBox = rec.Box + 1
			if newBox > models.MaxBox {
				newBox = models.MaxBox
			}
		} else {
			newBox = 1
		}
	}

	rec.Attempts++
	rec.LastSeen = now
	rec.Box = newBox
	rec.NextReview = now + boxDelaysMs[newBox]
	if correct {
		rec.Correct++
		rec.LastCorrect = now
	} else if typed != "" {
		rec.Misspellings = append([]string{typed}, rec.Misspellings...)
		if len(rec.Misspellings) > models.MaxMisspellings {
			rec.Misspellings = rec.Misspellings[:models.MaxMisspellings]
		}
	}

	t.recent = append(t.recent, models.WordAttempt{
		Word:           key,
		Category:       category,
		Correct:        correct,
		ResponseTimeMs: responseTimeMs,
		Typed:          typed,
		AttemptedAt:    now,
	})
	if len(t.recent) > maxRecentAttempts {
		t.recent = t.recent[len(t.recent)-maxRecentAttempts:]
	}

	t.removeIndexEntry(key)
	t.insertIndexEntry(indexEntry{word: key, nextReview: rec.NextReview, box: newBox})

	t.persist()
	return rec
}

func (t *Tracker) removeIndexEntry(word string) {
	for i, e := range t.index {
		if e.word == word {
			t.index = append(t.index[:i], t.index[i+1:]...)
			return
		}
	}
}

// insertIndexEntry keeps the index sorted using a binary-search insert,
// avoiding a full re-sort per attempt.
func (t *Tracker) insertIndexEntry(e indexEntry) {
	i := sort.Search(len(t.index), func(i int) bool {
		if t.index[i].nextReview != e.nextReview {
			return t.index[i].nextReview > e.nextReview
		}
		return t.index[i].word > e.word
	})
	t.index = append(t.index, indexEntry{})
	copy(t.index[i+1:], t.index[i:])
	t.index[i] = e
}

func (t *Tracker) persist() {
	raw, err := json.Marshal(snapshot{Records: t.records, Recent: t.recent})
	if err != nil {
		slog.Warn("review: marshal failed, keeping state in memory", "key", t.key, "error", err)
		return
	}
	if err := t.store.Set(t.key, raw); err != nil {
		slog.Warn("review: persist failed, keeping state in memory", "key", t.key, "error", err)
	}
}

// ReviewQueue returns the words due at asOf, weakest first: box
// ascending, accuracy ascending within a box. Mastered words (box 4)
// never appear. asOf is caller-supplied rather than read from the clock
// so the queue is a pure projection of recorded history; by convention
// callers pass LastAttemptAt.
func (t *Tracker) ReviewQueue(asOf int64) []models.WordRecord {
	// Index is sorted by nextReview, so the due set is a prefix.
	n := sort.Search(len(t.index), func(i int) bool {
		return t.index[i].nextReview > asOf
	})

	due := make([]models.WordRecord, 0, n)
	for _, e := range t.index[:n] {
		if e.box >= models.MaxBox {
			continue
		}
		if rec, ok := t.records[e.word]; ok {
			due = append(due, *rec)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].Box != due[j].Box {
			return due[i].Box < due[j].Box
		}
		return due[i].Accuracy() < due[j].Accuracy()
	})
	return due
}

// WeakCategories returns categories with at least 5 attempts and
// accuracy below 80%, worst first.
func (t *Tracker) WeakCategories() []models.CategoryStat {
	agg := make(map[string]*models.CategoryStat)
	for _, rec := range t.records {
		stat, ok := agg[rec.Category]
		if !ok {
			stat = &models.CategoryStat{Category: rec.Category}
			agg[rec.Category] = stat
		}
		stat.Attempts += rec.Attempts
		stat.Correct += rec.Correct
	}

	var weak []models.CategoryStat
	for _, stat := range agg {
		if stat.Attempts < 5 {
			continue
		}
		stat.Accuracy = float64(stat.Correct) / float64(stat.Attempts)
		if stat.Accuracy < 0.8 {
			weak = append(weak, *stat)
		}
	}
	sort.Slice(weak, func(i, j int) bool {
		if weak[i].Accuracy != weak[j].Accuracy {
			return weak[i].Accuracy < weak[j].Accuracy
		}
		return weak[i].Category < weak[j].Category
	})
	return weak
}

// MasteredCount counts words that have reached the top box.
func (t *Tracker) MasteredCount() int {
	count := 0
	for _, rec := range t.records {
		if rec.Mastered() {
			count++
		}
	}
	return count
}

// Record returns a copy of the record for word, if any.
func (t *Tracker) Record(word string) (models.WordRecord, bool) {
	rec, ok := t.records[strings.ToLower(strings.TrimSpace(word))]
	if !ok {
		return models.WordRecord{}, false
	}
	return *rec, true
}

// WordCount returns the number of distinct words tracked.
func (t *Tracker) WordCount() int {
	return len(t.records)
}

// RecentAttempts returns a copy of the bounded attempt log, oldest first.
func (t *Tracker) RecentAttempts() []models.WordAttempt {
	return append([]models.WordAttempt(nil), t.recent...)
}

// LastAttemptAt returns the timestamp of the most recent attempt, 0 for
// an empty history. It is the conventional asOf for ReviewQueue.
func (t *Tracker) LastAttemptAt() int64 {
	if len(t.recent) == 0 {
		return 0
	}
	return t.recent[len(t.recent)-1].AttemptedAt
}
