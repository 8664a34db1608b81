package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"spellstreak/internal/database"
	"spellstreak/internal/match"
	"spellstreak/internal/models"
)

// maxUpdateRetries bounds the optimistic-concurrency retry loop. A
// conflict means another client committed between our read and write;
// the transition is recomputed from fresh state, so retrying is safe.
const maxUpdateRetries = 5

// ErrUpdateConflict is returned when an Update loses the version race
// more times than the retry budget allows.
var ErrUpdateConflict = errors.New("room update conflict")

// RoomRepository is a SQL-backed match.Transactor. Rooms are stored as
// JSON payloads guarded by a version column: every Update re-reads the
// payload, applies the transition, and commits with a compare-and-swap
// on the version, which gives the same isolation guarantee as a
// document-database transaction.
type RoomRepository struct {
	db  *database.DB
	hub *match.Hub
}

// NewRoomRepository creates a new room repository publishing committed
// updates into hub. A nil hub disables publication.
func NewRoomRepository(db *database.DB, hub *match.Hub) *RoomRepository {
	return &RoomRepository{db: db, hub: hub}
}

// Create inserts a new room document.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	room.Version = 1
	payload, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	query := `
		INSERT INTO rooms (id, room_code, status, payload, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
	`
	_, err = r.db.Exec(query, room.ID, room.RoomCode, string(room.Status), string(payload), room.CreatedAt, room.UpdatedAt)
	return err
}

// Get retrieves a room by ID.
func (r *RoomRepository) Get(ctx context.Context, roomID string) (*models.Room, error) {
	room, _, err := r.read(roomID)
	return room, err
}

// FindByCode retrieves the most recent room with the given share code.
func (r *RoomRepository) FindByCode(ctx context.Context, code string) (*models.Room, error) {
	query := `
		SELECT payload FROM rooms
		WHERE room_code = ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	var payload string
	err := r.db.QueryRow(query, code).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, match.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return unmarshalRoom(payload)
}

// Update applies fn atomically: read payload and version, run the
// transition, commit with version CAS. A lost race re-reads and
// recomputes, up to maxUpdateRetries times.
func (r *RoomRepository) Update(ctx context.Context, roomID string, fn func(*models.Room) error) (*models.Room, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		room, version, err := r.read(roomID)
		if err != nil {
			return nil, err
		}

		if err := fn(room); err != nil {
			return nil, err
		}

		// The payload carries the commit version so published clones are
		// ordered even when two commits land on the same millisecond.
		room.Version = version + 1
		payload, err := json.Marshal(room)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal room: %w", err)
		}

		query := `
			UPDATE rooms
			SET payload = ?, status = ?, version = ?, updated_at = ?
			WHERE id = ? AND version = ?
		`
		result, err := r.db.Exec(query, string(payload), string(room.Status), version+1, room.UpdatedAt, roomID, version)
		if err != nil {
			return nil, err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			// Someone else committed first; recompute from fresh state.
			continue
		}

		if r.hub != nil {
			r.hub.Publish(room)
		}
		return room, nil
	}
	return nil, ErrUpdateConflict
}

// Delete removes a room document.
func (r *RoomRepository) Delete(ctx context.Context, roomID string) error {
	_, err := r.db.Exec("DELETE FROM rooms WHERE id = ?", roomID)
	return err
}

// Stale returns IDs of rooms the sweeper should reclaim: finished rooms
// last touched before finishedBefore, and rooms still waiting or playing
// that were created before abandonedBefore.
func (r *RoomRepository) Stale(finishedBefore, abandonedBefore int64) ([]string, error) {
	query := `
		SELECT id FROM rooms
		WHERE (status = ? AND updated_at < ?)
		   OR (status != ? AND created_at < ?)
	`

	rows, err := r.db.Query(query, string(models.RoomFinished), finishedBefore, string(models.RoomFinished), abandonedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *RoomRepository) read(roomID string) (*models.Room, int64, error) {
	var payload string
	var version int64
	err := r.db.QueryRow("SELECT payload, version FROM rooms WHERE id = ?", roomID).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, match.ErrRoomNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	room, err := unmarshalRoom(payload)
	if err != nil {
		return nil, 0, err
	}
	// The column is authoritative for rows written before the payload
	// carried a version.
	room.Version = version
	return room, version, nil
}

func unmarshalRoom(payload string) (*models.Room, error) {
	room := &models.Room{}
	if err := json.Unmarshal([]byte(payload), room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}
	return room, nil
}
