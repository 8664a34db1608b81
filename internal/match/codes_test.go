package match

import (
	"strings"
	"testing"
)

func TestNewRoomCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := NewRoomCode()
		if len(code) != codeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), codeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q, outside the alphabet", code, r)
			}
		}
	}
}

func TestCodeAlphabetExcludesAmbiguousGlyphs(t *testing.T) {
	for _, r := range "IO01" {
		if strings.ContainsRune(codeAlphabet, r) {
			t.Errorf("alphabet contains ambiguous glyph %q", r)
		}
	}
	if len(codeAlphabet) != 32 {
		t.Errorf("alphabet has %d symbols, want 32", len(codeAlphabet))
	}
}
