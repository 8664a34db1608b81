package service

import (
	"context"

	"github.com/google/uuid"

	"spellstreak/internal/clock"
	"spellstreak/internal/match"
	"spellstreak/internal/models"
)

// MatchService runs room operations server-side against the transactor.
// All multi-field mutation goes through the store's atomic update; the
// business rules live in the pure transition functions in the match
// package.
type MatchService struct {
	store match.Transactor
	words match.WordSource
	clock clock.Clock
}

// NewMatchService creates a new match service.
func NewMatchService(store match.Transactor, words match.WordSource, clk clock.Clock) *MatchService {
	return &MatchService{store: store, words: words, clock: clk}
}

// CreateRoom creates a waiting room hosted by uid with a pre-generated
// round sequence.
func (s *MatchService) CreateRoom(ctx context.Context, uid, displayName string) (*models.Room, error) {
	if uid == "" {
		return nil, match.ErrNotSignedIn
	}

	words, err := match.GenerateRounds(s.words, models.RoundCount)
	if err != nil {
		return nil, err
	}

	room := match.NewRoom(uuid.NewString(), uid, displayName, words, s.clock.Now().UnixMilli())
	if err := s.store.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// JoinRoom adds uid to the waiting room with the given code.
func (s *MatchService) JoinRoom(ctx context.Context, code, uid, displayName string) (*models.Room, error) {
	if uid == "" {
		return nil, match.ErrNotSignedIn
	}

	found, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UnixMilli()
	return s.store.Update(ctx, found.ID, func(r *models.Room) error {
		return match.AddPlayer(r, uid, displayName, now)
	})
}

// StartMatch transitions the room with the given code to playing.
// Host only.
func (s *MatchService) StartMatch(ctx context.Context, code, uid string) (*models.Room, error) {
	found, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UnixMilli()
	return s.store.Update(ctx, found.ID, func(r *models.Room) error {
		return match.Start(r, uid, now)
	})
}

// SubmitAnswer records uid's answer for round; the correctness check,
// score update and round-advance decision happen in one atomic step.
func (s *MatchService) SubmitAnswer(ctx context.Context, code, uid string, round int, answer string) (*models.Room, error) {
	found, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UnixMilli()
	return s.store.Update(ctx, found.ID, func(r *models.Room) error {
		_, applyErr := match.ApplyAnswer(r, uid, round, answer, now)
		return applyErr
	})
}

// GetRoom returns the current state of the room with the given code.
func (s *MatchService) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	return s.store.FindByCode(ctx, code)
}
