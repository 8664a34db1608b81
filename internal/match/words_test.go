package match

import (
	"strings"
	"testing"

	"spellstreak/internal/models"
)

func TestMisspellings(t *testing.T) {
	tests := []struct {
		word string
		n    int
	}{
		{"cat", 3},
		{"because", 3},
		{"rhythm", 5},
		{"to", 3},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			got := Misspellings(tt.word, tt.n)
			if len(got) > tt.n {
				t.Fatalf("returned %d misspellings, cap is %d", len(got), tt.n)
			}
			seen := make(map[string]bool)
			for _, m := range got {
				if m == tt.word {
					t.Errorf("misspelling equals the word itself: %q", m)
				}
				if m == "" {
					t.Error("empty misspelling")
				}
				if seen[m] {
					t.Errorf("duplicate misspelling %q", m)
				}
				seen[m] = true
			}
		})
	}
}

func TestMisspellingsProduceEnoughOptions(t *testing.T) {
	// Every builtin word must support a full option set.
	for difficulty, words := range builtinBank {
		for _, w := range words {
			if got := Misspellings(w, models.OptionCount-1); len(got) != models.OptionCount-1 {
				t.Errorf("difficulty %d word %q: %d misspellings, want %d", difficulty, w, len(got), models.OptionCount-1)
			}
		}
	}
}

func TestGenerateRounds(t *testing.T) {
	rounds, err := GenerateRounds(BankSource{}, models.RoundCount)
	if err != nil {
		t.Fatal(err)
	}
	if len(rounds) != models.RoundCount {
		t.Fatalf("generated %d rounds, want %d", len(rounds), models.RoundCount)
	}

	for i, rw := range rounds {
		if len(rw.Options) != models.OptionCount {
			t.Errorf("round %d: %d options, want %d", i, len(rw.Options), models.OptionCount)
		}
		if rw.CorrectIndex < 0 || rw.CorrectIndex >= len(rw.Options) {
			t.Fatalf("round %d: CorrectIndex %d out of range", i, rw.CorrectIndex)
		}
		if rw.Options[rw.CorrectIndex] != rw.Word {
			t.Errorf("round %d: Options[%d] = %q, want the canonical %q", i, rw.CorrectIndex, rw.Options[rw.CorrectIndex], rw.Word)
		}
		if rw.Word != strings.ToLower(rw.Word) {
			t.Errorf("round %d: word %q not lowercased", i, rw.Word)
		}
	}
}

func TestGenerateRoundsRampsDifficulty(t *testing.T) {
	// A source that records the difficulty of every request.
	var asked []int
	src := sourceFunc(func(difficulty, n int) ([]string, error) {
		asked = append(asked, difficulty)
		return BankSource{}.RandomWords(difficulty, n)
	})

	if _, err := GenerateRounds(src, models.RoundCount); err != nil {
		t.Fatal(err)
	}

	// Difficulty steps up every three rounds and never exceeds 5.
	prev := 0
	for _, d := range asked {
		if d < prev {
			t.Fatalf("difficulty went down: %v", asked)
		}
		if d < 1 || d > 5 {
			t.Fatalf("difficulty %d out of range: %v", d, asked)
		}
		prev = d
	}
	if asked[0] != 1 {
		t.Errorf("first round difficulty = %d, want 1", asked[0])
	}
}

type sourceFunc func(difficulty, n int) ([]string, error)

func (f sourceFunc) RandomWords(difficulty, n int) ([]string, error) { return f(difficulty, n) }

func TestBankSourceUnknownDifficulty(t *testing.T) {
	if _, err := (BankSource{}).RandomWords(9, 1); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}
