package handlers

import (
	"spellstreak/internal/models"
)

// roundView is what a player may see of a round: the prompt and the
// option set, never the canonical spelling directly.
type roundView struct {
	Round   int      `json:"round"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type playerView struct {
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
	Answered    bool   `json:"answered"`
	Results     []int  `json:"results"`
}

type roomResponse struct {
	RoomCode     string                `json:"roomCode"`
	HostUID      string                `json:"hostUid"`
	Status       models.RoomStatus     `json:"status"`
	CurrentRound int                   `json:"currentRound"`
	RoundCount   int                   `json:"roundCount"`
	TurnTimeMs   int64                 `json:"turnTimeMs"`
	Round        *roundView            `json:"round,omitempty"`
	Players      map[string]playerView `json:"players"`
}

// roomView projects a room into its API shape. The full word sequence
// stays server-side; only the round in play is exposed, results are
// shared since both players see the running score anyway.
func roomView(room *models.Room, round int) roomResponse {
	resp := roomResponse{
		RoomCode:     room.RoomCode,
		HostUID:      room.HostUID,
		Status:       room.Status,
		CurrentRound: room.CurrentRound,
		RoundCount:   room.RoundCount,
		TurnTimeMs:   room.TurnTimeMs,
		Players:      make(map[string]playerView, len(room.Players)),
	}

	if room.Status == models.RoomPlaying && round >= 0 && round < len(room.Words) {
		w := room.Words[round]
		resp.Round = &roundView{
			Round:   round,
			Prompt:  w.Prompt,
			Options: append([]string(nil), w.Options...),
		}
	}

	for uid, p := range room.Players {
		resp.Players[uid] = playerView{
			DisplayName: p.DisplayName,
			Score:       p.Score,
			Answered:    p.Answered(room.CurrentRound),
			Results:     append([]int(nil), p.Results...),
		}
	}
	return resp
}
