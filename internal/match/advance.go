package match

import (
	"strings"
	"unicode"

	"spellstreak/internal/models"
)

// NewRoom builds a waiting room hosted by hostUID with a pre-generated
// round sequence. Words are fixed at creation so both players see
// identical prompts.
func NewRoom(id, hostUID, displayName string, words []models.RoundWord, now int64) *models.Room {
	return &models.Room{
		ID:           id,
		RoomCode:     NewRoomCode(),
		HostUID:      hostUID,
		Status:       models.RoomWaiting,
		CurrentRound: 0,
		RoundCount:   len(words),
		TurnTimeMs:   models.TurnTimeMs,
		Words:        words,
		Players: map[string]*models.PlayerData{
			hostUID: models.NewPlayerData(displayName, len(words)),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddPlayer joins uid to a waiting room. Rejoining an existing slot is
// idempotent; a third distinct player is rejected.
func AddPlayer(room *models.Room, uid, displayName string, now int64) error {
	if room.Player(uid) != nil {
		return nil
	}
	if room.Status != models.RoomWaiting {
		return ErrAlreadyStarted
	}
	if room.Full() {
		return ErrRoomFull
	}
	room.Players[uid] = models.NewPlayerData(displayName, room.RoundCount)
	room.UpdatedAt = now
	return nil
}

// Start transitions a waiting room to playing. Host only. There is
// deliberately no check that two players are present; a solo "match"
// is allowed to start.
func Start(room *models.Room, uid string, now int64) error {
	if uid != room.HostUID {
		return ErrNotHost
	}
	if room.Status != models.RoomWaiting {
		return ErrAlreadyStarted
	}
	room.Status = models.RoomPlaying
	room.CurrentRound = 0
	room.UpdatedAt = now
	return nil
}

// ApplyAnswer records uid's answer for round and returns whether the
// room advanced (next round or finished). It is a pure state transition
// with no side effects: the transaction wrapper invokes it against a
// fresh read of the room, which is what keeps two racing submissions
// from double-advancing the round or losing a score increment.
func ApplyAnswer(room *models.Room, uid string, round int, answer string, now int64) (bool, error) {
	if room.Status != models.RoomPlaying {
		return false, ErrNotPlaying
	}
	player := room.Player(uid)
	if player == nil {
		return false, ErrNotInRoom
	}
	if round < 0 || round >= room.RoundCount {
		return false, ErrBadRound
	}
	// Resubmission is a no-op: the first answer stands and the score is
	// never counted twice (the turn timer can race a manual submit).
	if player.Answered(round) {
		return false, nil
	}

	answer = cleanAnswer(answer)
	correct := strings.EqualFold(answer, room.Words[round].Word)

	player.Answers[round] = answer
	if correct {
		player.Results[round] = models.ResultRight
		player.Score++
	} else {
		player.Results[round] = models.ResultWrong
	}
	room.UpdatedAt = now

	// Advance only once every other present player has committed an
	// answer for this round, in the same atomic step that recorded ours.
	for id, p := range room.Players {
		if id != uid && !p.Answered(round) {
			return false, nil
		}
	}
	if round != room.CurrentRound {
		return false, nil
	}

	if round+1 >= room.RoundCount {
		room.Status = models.RoomFinished
	} else {
		room.CurrentRound = round + 1
	}
	return true, nil
}

// cleanAnswer trims a submitted spelling and drops control characters so
// no input can collide with the unanswered sentinel. A submission that
// cleans down to empty is recorded as an empty (wrong) answer.
func cleanAnswer(answer string) string {
	answer = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, answer)
	return strings.TrimSpace(answer)
}
