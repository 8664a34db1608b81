// Package jobs holds background maintenance tasks that run on a
// schedule alongside the HTTP server.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"spellstreak/internal/clock"
	"spellstreak/internal/repository"
)

// TrackerEvictor releases cached per-player review state that has sat
// idle. Implemented by service.ReviewService.
type TrackerEvictor interface {
	EvictIdle(maxIdle time.Duration) int
}

// RoomSweeper reclaims state nobody will come back to: finished rooms
// past their display window, abandoned rooms past the hard age cap, and
// idle review-tracker cache entries.
type RoomSweeper struct {
	rooms       *repository.RoomRepository
	trackers    TrackerEvictor
	clock       clock.Clock
	scheduler   *gocron.Scheduler
	finishedTTL time.Duration
	maxAge      time.Duration
	interval    time.Duration
}

// NewRoomSweeper creates a sweeper. A nil trackers skips cache eviction.
func NewRoomSweeper(rooms *repository.RoomRepository, trackers TrackerEvictor, clk clock.Clock, finishedTTL, maxAge, interval time.Duration) *RoomSweeper {
	return &RoomSweeper{
		rooms:       rooms,
		trackers:    trackers,
		clock:       clk,
		scheduler:   gocron.NewScheduler(time.UTC),
		finishedTTL: finishedTTL,
		maxAge:      maxAge,
		interval:    interval,
	}
}

// Start schedules the sweep and runs the scheduler in the background.
func (s *RoomSweeper) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.Sweep); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop halts the scheduler. Any sweep in flight finishes.
func (s *RoomSweeper) Stop() {
	s.scheduler.Stop()
}

// Sweep removes stale rooms and idle tracker cache entries in one pass.
// Delete failures are logged and skipped; the next run retries them.
func (s *RoomSweeper) Sweep() {
	if s.trackers != nil {
		if evicted := s.trackers.EvictIdle(s.maxAge); evicted > 0 {
			slog.Info("tracker sweep complete", "evicted", evicted)
		}
	}

	now := s.clock.Now().UnixMilli()
	finishedBefore := now - s.finishedTTL.Milliseconds()
	abandonedBefore := now - s.maxAge.Milliseconds()

	ids, err := s.rooms.Stale(finishedBefore, abandonedBefore)
	if err != nil {
		slog.Error("room sweep: listing stale rooms", "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	removed := 0
	for _, id := range ids {
		if err := s.rooms.Delete(context.Background(), id); err != nil {
			slog.Error("room sweep: deleting room", "room_id", id, "error", err)
			continue
		}
		removed++
	}
	slog.Info("room sweep complete", "stale", len(ids), "removed", removed)
}
