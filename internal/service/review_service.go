package service

import (
	"sync"
	"time"

	"spellstreak/internal/clock"
	"spellstreak/internal/models"
	"spellstreak/internal/review"
)

// ReviewService owns one word-history tracker per player. Trackers are
// loaded lazily from the store and cached; all access to a tracker is
// serialized behind the service mutex, matching the one-writer model the
// tracker assumes. Idle trackers are evicted by the background sweep,
// which keeps the cache bounded by the set of recently active players.
type ReviewService struct {
	clock clock.Clock
	store review.Store

	mu       sync.Mutex
	trackers map[string]*trackerEntry
}

type trackerEntry struct {
	tracker *review.Tracker
	lastUse time.Time
}

// NewReviewService creates a review service persisting through store.
func NewReviewService(clk clock.Clock, store review.Store) *ReviewService {
	return &ReviewService{
		clock:    clk,
		store:    store,
		trackers: make(map[string]*trackerEntry),
	}
}

func (s *ReviewService) tracker(uid string) *review.Tracker {
	e, ok := s.trackers[uid]
	if !ok {
		e = &trackerEntry{tracker: review.NewTracker(uid, s.clock, s.store)}
		s.trackers[uid] = e
	}
	e.lastUse = s.clock.Now()
	return e.tracker
}

// EvictIdle drops cached trackers untouched for longer than maxIdle and
// returns how many were released. Trackers persist synchronously on
// every mutation, so an evicted player's history reloads intact from the
// store on their next request.
func (s *ReviewService) EvictIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.clock.Now().Add(-maxIdle)
	evicted := 0
	for uid, e := range s.trackers {
		if e.lastUse.Before(cutoff) {
			delete(s.trackers, uid)
			evicted++
		}
	}
	return evicted
}

// RecordAttempt records one answer for a player's word and returns the
// updated record.
func (s *ReviewService) RecordAttempt(uid, word, category string, correct bool, responseTimeMs int64, typed string) models.WordRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.tracker(uid).RecordAttempt(word, category, correct, responseTimeMs, typed)
}

// ReviewQueue returns the player's due words, weakest first. The queue
// is computed as of the player's most recent attempt, so it is a stable
// projection of recorded history rather than a live countdown.
func (s *ReviewService) ReviewQueue(uid string) []models.WordRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tracker(uid)
	return t.ReviewQueue(t.LastAttemptAt())
}

// WeakCategories returns the player's weak practice categories.
func (s *ReviewService) WeakCategories(uid string) []models.CategoryStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker(uid).WeakCategories()
}

// MasteredCount returns how many words the player has mastered.
func (s *ReviewService) MasteredCount(uid string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker(uid).MasteredCount()
}

// RecentAttempts returns the player's bounded attempt log, oldest first.
func (s *ReviewService) RecentAttempts(uid string) []models.WordAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker(uid).RecentAttempts()
}
