package match

import "math/rand/v2"

// codeAlphabet is the 32-symbol set room codes are drawn from. Ambiguous
// glyphs (I, O, 0, 1) are excluded so codes survive being read aloud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// codeLength is the number of symbols in a room code.
const codeLength = 6

// NewRoomCode generates a shareable room code. Codes are not checked for
// collisions against active rooms; with a 32^6 space and short room
// lifetimes the odds are acceptable.
func NewRoomCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(code)
}
