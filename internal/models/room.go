package models

// RoomStatus is the lifecycle phase of a match room. Transitions are
// one-directional: waiting -> playing -> finished.
type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomPlaying  RoomStatus = "playing"
	RoomFinished RoomStatus = "finished"
)

// Fixed match parameters. Both players race through the same ten rounds
// with fifteen seconds per turn.
const (
	RoundCount  = 10
	TurnTimeMs  = 15000
	MaxPlayers  = 2
	OptionCount = 4
)

// NoAnswer is the sentinel stored in PlayerData.Answers until a player
// submits. It is distinct from a legitimate empty-string answer (which a
// timed-out turn produces).
const NoAnswer = "\x00"

// Result values for PlayerData.Results.
const (
	ResultPending = -1
	ResultWrong   = 0
	ResultRight   = 1
)

// RoundWord is one pre-generated round definition. The option set holds
// the canonical spelling plus generated misspellings; CorrectIndex points
// at the canonical one.
type RoundWord struct {
	Word         string   `json:"word"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// PlayerData is one player's slice of a room. Answers and Results are
// parallel arrays indexed by round, initialized to sentinels.
type PlayerData struct {
	DisplayName string   `json:"displayName"`
	Ready       bool     `json:"ready"`
	Score       int      `json:"score"`
	Answers     []string `json:"answers"`
	Results     []int    `json:"results"`
}

// NewPlayerData returns a PlayerData with sentinel-filled arrays for a
// match of rounds rounds.
func NewPlayerData(displayName string, rounds int) *PlayerData {
	answers := make([]string, rounds)
	results := make([]int, rounds)
	for i := range answers {
		answers[i] = NoAnswer
		results[i] = ResultPending
	}
	return &PlayerData{
		DisplayName: displayName,
		Answers:     answers,
		Results:     results,
	}
}

// Answered reports whether the player has a non-sentinel answer for round.
func (p *PlayerData) Answered(round int) bool {
	return round >= 0 && round < len(p.Answers) && p.Answers[round] != NoAnswer
}

// Room is the shared mutable document for one 1v1 match. All mutation
// happens through the store's atomic update so that two racing clients
// never observe (or produce) a half-applied state.
type Room struct {
	ID           string                 `json:"id"`
	RoomCode     string                 `json:"roomCode"`
	HostUID      string                 `json:"hostUid"`
	Status       RoomStatus             `json:"status"`
	CurrentRound int                    `json:"currentRound"`
	RoundCount   int                    `json:"roundCount"`
	TurnTimeMs   int64                  `json:"turnTimeMs"`
	Words        []RoundWord            `json:"words"`
	Players      map[string]*PlayerData `json:"players"`
	CreatedAt    int64                  `json:"createdAt"`
	UpdatedAt    int64                  `json:"updatedAt"`

	// Version counts commits. Stores bump it on every committed update,
	// so subscribers can drop a publish that arrives after a newer one.
	Version int64 `json:"version"`
}

// Player returns the PlayerData for uid, nil if absent.
func (r *Room) Player(uid string) *PlayerData {
	if r.Players == nil {
		return nil
	}
	return r.Players[uid]
}

// Full reports whether the room already has its maximum player count.
func (r *Room) Full() bool {
	return len(r.Players) >= MaxPlayers
}

// Clone returns a deep copy of the room. Stores hand clones to update
// callbacks so a failed transaction never leaves the shared copy dirty.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Words = make([]RoundWord, len(r.Words))
	for i, w := range r.Words {
		cp.Words[i] = w
		cp.Words[i].Options = append([]string(nil), w.Options...)
	}
	cp.Players = make(map[string]*PlayerData, len(r.Players))
	for uid, p := range r.Players {
		pc := *p
		pc.Answers = append([]string(nil), p.Answers...)
		pc.Results = append([]int(nil), p.Results...)
		cp.Players[uid] = &pc
	}
	return &cp
}
