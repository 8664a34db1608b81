// Package match runs fixed-round, timed, two-player spelling matches
// over a shared room document. All multi-field room mutation goes
// through a Transactor so concurrent submissions stay consistent; the
// Coordinator is one client's session, driving the turn timer and
// reacting to remote changes.
package match

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"spellstreak/internal/clock"
	"spellstreak/internal/models"
)

// Phase is the coordinator's local state machine.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseCreating Phase = "creating"
	PhaseLobby    Phase = "lobby"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// Coordinator is one player's view of a match session. It is safe for
// concurrent use; the turn timer and the subscription callback race
// against caller-invoked operations.
type Coordinator struct {
	store Transactor
	sub   Subscriber
	clock clock.Clock
	gen   func() ([]models.RoundWord, error)

	uid  string
	name string

	mu         sync.Mutex
	phase      Phase
	roomID     string
	room       *models.Room
	cancelSub  func()
	timer      *time.Timer
	timerRound int

	// OnUpdate, when set before entering a room, is invoked with a fresh
	// room clone after every remote change.
	OnUpdate func(*models.Room)
}

// NewCoordinator creates an idle coordinator for the given player
// identity. gen produces the round sequence when this player hosts.
func NewCoordinator(store Transactor, sub Subscriber, clk clock.Clock, uid, displayName string, gen func() ([]models.RoundWord, error)) *Coordinator {
	return &Coordinator{
		store: store,
		sub:   sub,
		clock: clk,
		gen:   gen,
		uid:   uid,
		name:  displayName,
		phase: PhaseIdle,
	}
}

// Phase returns the coordinator's current phase.
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Room returns a clone of the last known room state, nil when idle.
func (c *Coordinator) Room() *models.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room == nil {
		return nil
	}
	return c.room.Clone()
}

// CreateRoom hosts a new room and enters its lobby.
func (c *Coordinator) CreateRoom(ctx context.Context) (*models.Room, error) {
	if c.uid == "" {
		return nil, ErrNotSignedIn
	}

	c.mu.Lock()
	c.phase = PhaseCreating
	c.mu.Unlock()

	words, err := c.gen()
	if err != nil {
		c.mu.Lock()
		c.phase = PhaseIdle
		c.mu.Unlock()
		return nil, err
	}

	room := NewRoom(uuid.NewString(), c.uid, c.name, words, c.clock.Now().UnixMilli())
	if err := c.store.Create(ctx, room); err != nil {
		c.mu.Lock()
		c.phase = PhaseIdle
		c.mu.Unlock()
		return nil, err
	}

	c.enterRoom(room, PhaseLobby)
	return room.Clone(), nil
}

// JoinRoom joins the waiting room identified by code. Rejoining a slot
// this player already holds is idempotent.
func (c *Coordinator) JoinRoom(ctx context.Context, code string) (*models.Room, error) {
	if c.uid == "" {
		return nil, ErrNotSignedIn
	}

	found, err := c.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now().UnixMilli()
	room, err := c.store.Update(ctx, found.ID, func(r *models.Room) error {
		return AddPlayer(r, c.uid, c.name, now)
	})
	if err != nil {
		return nil, err
	}

	phase := PhaseLobby
	if room.Status == models.RoomPlaying {
		phase = PhasePlaying
	}
	c.enterRoom(room, phase)
	return room, nil
}

// StartMatch transitions the hosted room to playing.
func (c *Coordinator) StartMatch(ctx context.Context) error {
	c.mu.Lock()
	roomID := c.roomID
	c.mu.Unlock()
	if roomID == "" {
		return ErrRoomNotFound
	}

	now := c.clock.Now().UnixMilli()
	_, err := c.store.Update(ctx, roomID, func(r *models.Room) error {
		return Start(r, c.uid, now)
	})
	return c.downgradeOnLoss(err)
}

// SubmitAnswer records this player's answer for round. Correctness, the
// score update and the round-advance check all happen inside the store's
// atomic update.
func (c *Coordinator) SubmitAnswer(ctx context.Context, round int, answer string) error {
	c.mu.Lock()
	roomID := c.roomID
	c.mu.Unlock()
	if roomID == "" {
		return ErrRoomNotFound
	}

	now := c.clock.Now().UnixMilli()
	_, err := c.store.Update(ctx, roomID, func(r *models.Room) error {
		_, applyErr := ApplyAnswer(r, c.uid, round, answer, now)
		return applyErr
	})
	return c.downgradeOnLoss(err)
}

// Leave tears the session down: subscription cancelled, timer stopped,
// phase back to idle. The room document itself is left for the sweeper.
func (c *Coordinator) Leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

// enterRoom installs room state and the change subscription.
func (c *Coordinator) enterRoom(room *models.Room, phase Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
	c.room = room.Clone()
	c.roomID = room.ID
	c.phase = phase
	if c.sub != nil {
		c.cancelSub = c.sub.Subscribe(room.ID, c.onChange)
	}
	if phase == PhasePlaying {
		c.startTimerLocked(room.CurrentRound)
	}
}

// onChange handles a remote room update: track state, manage the turn
// timer across round and status changes.
func (c *Coordinator) onChange(room *models.Room) {
	c.mu.Lock()
	if c.roomID != room.ID {
		c.mu.Unlock()
		return
	}
	// Publishes happen outside the commit lock, so two racing commits can
	// arrive in reverse order. An older commit must never overwrite a
	// newer one: it would regress the phase and re-arm a dead turn timer.
	if c.room != nil && room.Version <= c.room.Version {
		c.mu.Unlock()
		return
	}
	c.room = room

	switch room.Status {
	case models.RoomPlaying:
		if c.phase != PhasePlaying || c.timerRound != room.CurrentRound {
			c.phase = PhasePlaying
			c.startTimerLocked(room.CurrentRound)
		}
	case models.RoomFinished:
		c.phase = PhaseFinished
		c.stopTimerLocked()
	}
	notify := c.OnUpdate
	c.mu.Unlock()

	if notify != nil {
		notify(room.Clone())
	}
}

// startTimerLocked arms the turn timer for round, replacing any previous
// timer so stale rounds never fire an auto-submit.
func (c *Coordinator) startTimerLocked(round int) {
	c.stopTimerLocked()
	c.timerRound = round
	turnTime := time.Duration(c.room.TurnTimeMs) * time.Millisecond
	c.timer = time.AfterFunc(turnTime, func() { c.autoSubmit(round) })
}

func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// autoSubmit fires when the turn timer expires: if this player has not
// answered the round yet, an empty answer (always incorrect) is
// submitted on their behalf.
func (c *Coordinator) autoSubmit(round int) {
	c.mu.Lock()
	stale := c.phase != PhasePlaying || c.room == nil || c.room.CurrentRound != round
	answered := c.room != nil && c.room.Player(c.uid) != nil && c.room.Player(c.uid).Answered(round)
	c.mu.Unlock()
	if stale || answered {
		return
	}

	if err := c.SubmitAnswer(context.Background(), round, ""); err != nil {
		slog.Warn("match: timeout auto-submit failed", "round", round, "error", err)
	}
}

// downgradeOnLoss drops the session to idle when the room vanished out
// from under it; other errors pass through for the caller to retry.
func (c *Coordinator) downgradeOnLoss(err error) error {
	if err == nil || !errors.Is(err, ErrRoomNotFound) {
		return err
	}
	c.mu.Lock()
	c.teardownLocked()
	c.mu.Unlock()
	return err
}

func (c *Coordinator) teardownLocked() {
	if c.cancelSub != nil {
		c.cancelSub()
		c.cancelSub = nil
	}
	c.stopTimerLocked()
	c.room = nil
	c.roomID = ""
	c.phase = PhaseIdle
}
