package match

import (
	"errors"
	"testing"

	"spellstreak/internal/models"
)

func testWords(words ...string) []models.RoundWord {
	out := make([]models.RoundWord, len(words))
	for i, w := range words {
		out[i] = models.RoundWord{
			Word:         w,
			Prompt:       "pick the correct spelling",
			Options:      []string{w, w + "x"},
			CorrectIndex: 0,
		}
	}
	return out
}

func TestNewRoom(t *testing.T) {
	room := NewRoom("room-1", "host", "Ada", testWords("cat", "dog", "sun"), 1000)

	if room.Status != models.RoomWaiting {
		t.Errorf("Status = %q, want waiting", room.Status)
	}
	if room.RoundCount != 3 {
		t.Errorf("RoundCount = %d, want 3", room.RoundCount)
	}
	if len(room.RoomCode) != codeLength {
		t.Errorf("RoomCode %q, want %d symbols", room.RoomCode, codeLength)
	}
	host := room.Player("host")
	if host == nil {
		t.Fatal("host has no player slot")
	}
	if host.Answered(0) {
		t.Error("fresh player reports round 0 answered")
	}
}

func TestAddPlayer(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*models.Room)
		uid     string
		wantErr error
	}{
		{
			name: "second player joins a waiting room",
			uid:  "guest",
		},
		{
			name:  "rejoining an existing slot is idempotent",
			setup: func(r *models.Room) { AddPlayer(r, "guest", "Grace", 0) },
			uid:   "guest",
		},
		{
			name: "rejoin is allowed even after the match started",
			setup: func(r *models.Room) {
				AddPlayer(r, "guest", "Grace", 0)
				Start(r, "host", 0)
			},
			uid: "guest",
		},
		{
			name:    "third player is rejected",
			setup:   func(r *models.Room) { AddPlayer(r, "guest", "Grace", 0) },
			uid:     "third",
			wantErr: ErrRoomFull,
		},
		{
			name:    "new player cannot join a started match",
			setup:   func(r *models.Room) { Start(r, "host", 0) },
			uid:     "late",
			wantErr: ErrAlreadyStarted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := NewRoom("room-1", "host", "Ada", testWords("cat", "dog"), 0)
			if tt.setup != nil {
				tt.setup(room)
			}

			err := AddPlayer(room, tt.uid, "Player", 10)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddPlayer() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && room.Player(tt.uid) == nil {
				t.Error("player slot missing after successful join")
			}
		})
	}
}

func TestStart(t *testing.T) {
	room := NewRoom("room-1", "host", "Ada", testWords("cat", "dog"), 0)
	AddPlayer(room, "guest", "Grace", 0)

	if err := Start(room, "guest", 10); !errors.Is(err, ErrNotHost) {
		t.Fatalf("non-host Start() error = %v, want ErrNotHost", err)
	}
	if err := Start(room, "host", 10); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if room.Status != models.RoomPlaying || room.CurrentRound != 0 {
		t.Errorf("after start: status %q round %d, want playing/0", room.Status, room.CurrentRound)
	}
	if err := Start(room, "host", 20); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestStartAllowsSoloMatch(t *testing.T) {
	room := NewRoom("room-1", "host", "Ada", testWords("cat"), 0)
	if err := Start(room, "host", 10); err != nil {
		t.Fatalf("solo Start() error = %v", err)
	}
}

func TestApplyAnswerValidation(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*models.Room)
		uid     string
		round   int
		wantErr error
	}{
		{
			name:    "room not playing",
			setup:   func(r *models.Room) { r.Status = models.RoomWaiting },
			uid:     "host",
			wantErr: ErrNotPlaying,
		},
		{
			name:    "unknown player",
			uid:     "stranger",
			wantErr: ErrNotInRoom,
		},
		{
			name:    "negative round",
			uid:     "host",
			round:   -1,
			wantErr: ErrBadRound,
		},
		{
			name:    "round beyond the match",
			uid:     "host",
			round:   2,
			wantErr: ErrBadRound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := NewRoom("room-1", "host", "Ada", testWords("cat", "dog"), 0)
			AddPlayer(room, "guest", "Grace", 0)
			Start(room, "host", 0)
			if tt.setup != nil {
				tt.setup(room)
			}

			_, err := ApplyAnswer(room, tt.uid, tt.round, "cat", 10)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ApplyAnswer() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyAnswerScoringAndAdvance(t *testing.T) {
	room := NewRoom("room-1", "host", "Ada", testWords("cat", "dog"), 0)
	AddPlayer(room, "guest", "Grace", 0)
	Start(room, "host", 0)

	// First answer of the round records but does not advance.
	advanced, err := ApplyAnswer(room, "host", 0, "Cat ", 10)
	if err != nil {
		t.Fatal(err)
	}
	if advanced {
		t.Error("advanced before the other player answered")
	}
	host := room.Player("host")
	if host.Results[0] != models.ResultRight || host.Score != 1 {
		t.Errorf("host result/score = %d/%d, want right/1", host.Results[0], host.Score)
	}
	if room.CurrentRound != 0 {
		t.Errorf("CurrentRound = %d, want 0", room.CurrentRound)
	}

	// Second answer completes the round and advances in the same step.
	advanced, err = ApplyAnswer(room, "guest", 0, "kat", 20)
	if err != nil {
		t.Fatal(err)
	}
	if !advanced {
		t.Error("round did not advance after both players answered")
	}
	guest := room.Player("guest")
	if guest.Results[0] != models.ResultWrong || guest.Score != 0 {
		t.Errorf("guest result/score = %d/%d, want wrong/0", guest.Results[0], guest.Score)
	}
	if room.CurrentRound != 1 {
		t.Errorf("CurrentRound = %d, want 1", room.CurrentRound)
	}
}

func TestApplyAnswerComparisonIsCaseInsensitive(t *testing.T) {
	tests := []struct {
		answer string
		want   int
	}{
		{"cat", models.ResultRight},
		{"CAT", models.ResultRight},
		{"  cAt  ", models.ResultRight},
		{"kat", models.ResultWrong},
		{"", models.ResultWrong},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			room := NewRoom("room-1", "host", "Ada", testWords("cat"), 0)
			Start(room, "host", 0)
			if _, err := ApplyAnswer(room, "host", 0, tt.answer, 10); err != nil {
				t.Fatal(err)
			}
			if got := room.Player("host").Results[0]; got != tt.want {
				t.Errorf("result for %q = %d, want %d", tt.answer, got, tt.want)
			}
		})
	}
}

func TestApplyAnswerFinishesOnLastRound(t *testing.T) {
	room := NewRoom("room-1", "host", "Ada", testWords("cat", "dog"), 0)
	AddPlayer(room, "guest", "Grace", 0)
	Start(room, "host", 0)

	ApplyAnswer(room, "host", 0, "cat", 10)
	ApplyAnswer(room, "guest", 0, "cat", 11)

	// Final round: both answer, the closing submission finishes the match.
	if _, err := ApplyAnswer(room, "guest", 1, "dog", 20); err != nil {
		t.Fatal(err)
	}
	advanced, err := ApplyAnswer(room, "host", 1, "dog", 21)
	if err != nil {
		t.Fatal(err)
	}
	if !advanced {
		t.Error("closing submission did not report advancement")
	}
	if room.Status != models.RoomFinished {
		t.Errorf("Status = %q, want finished", room.Status)
	}
	if room.Player("host").Score != 2 || room.Player("guest").Score != 2 {
		t.Errorf("scores = %d/%d, want 2/2", room.Player("host").Score, room.Player("guest").Score)
	}
}

func TestApplyAnswerLateRoundRecordsWithoutAdvancing(t *testing.T) {
	room := NewRoom("room-1", "host", "Ada", testWords("cat", "dog", "sun"), 0)
	AddPlayer(room, "guest", "Grace", 0)
	Start(room, "host", 0)

	ApplyAnswer(room, "host", 0, "cat", 10)
	ApplyAnswer(room, "guest", 0, "cat", 11) // advances to round 1
	ApplyAnswer(room, "host", 1, "dog", 20)
	ApplyAnswer(room, "guest", 1, "dog", 21) // advances to round 2

	// A straggling answer for round 0 must not move the round pointer.
	advanced, err := ApplyAnswer(room, "host", 0, "cat", 30)
	if err != nil {
		t.Fatal(err)
	}
	if advanced {
		t.Error("stale-round submission advanced the room")
	}
	if room.CurrentRound != 2 {
		t.Errorf("CurrentRound = %d, want 2", room.CurrentRound)
	}
}

func TestApplyAnswerResubmissionIsNoOp(t *testing.T) {
	room := NewRoom("room-1", "host", "Ada", testWords("cat", "dog"), 0)
	Start(room, "host", 0)

	if _, err := ApplyAnswer(room, "host", 0, "cat", 10); err != nil {
		t.Fatal(err)
	}
	// The second submit, right or wrong, changes nothing.
	if _, err := ApplyAnswer(room, "host", 0, "kat", 20); err != nil {
		t.Fatal(err)
	}

	host := room.Player("host")
	if host.Score != 1 {
		t.Errorf("Score = %d, want 1 (no double counting)", host.Score)
	}
	if host.Answers[0] != "cat" {
		t.Errorf("Answers[0] = %q, want the first answer kept", host.Answers[0])
	}
}

// Control characters in a submission are dropped before recording, so a
// player can never store the unanswered sentinel itself and reopen the
// round for a second answer.
func TestApplyAnswerStripsControlCharacters(t *testing.T) {
	room := NewRoom("room-1", "host", "Ada", testWords("cat", "dog"), 0)
	Start(room, "host", 0)

	if _, err := ApplyAnswer(room, "host", 0, models.NoAnswer, 10); err != nil {
		t.Fatal(err)
	}

	host := room.Player("host")
	if !host.Answered(0) {
		t.Fatal("sentinel submission left the round unanswered")
	}
	if host.Answers[0] != "" {
		t.Errorf("Answers[0] = %q, want empty after cleaning", host.Answers[0])
	}
	if host.Results[0] != models.ResultWrong {
		t.Errorf("Results[0] = %d, want wrong", host.Results[0])
	}

	// The round is spent; a correct answer cannot slip in afterwards.
	if _, err := ApplyAnswer(room, "host", 0, "cat", 20); err != nil {
		t.Fatal(err)
	}
	if host.Score != 0 {
		t.Errorf("Score = %d, want 0", host.Score)
	}

	// Embedded control bytes are stripped, not counted against the player.
	if _, err := ApplyAnswer(room, "host", 1, "d\x00og\n", 30); err != nil {
		t.Fatal(err)
	}
	if host.Answers[1] != "dog" || host.Results[1] != models.ResultRight {
		t.Errorf("Answers[1] = %q, Results[1] = %d, want cleaned correct answer", host.Answers[1], host.Results[1])
	}
}
