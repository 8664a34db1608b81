package match

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"spellstreak/internal/models"
)

// WordSource supplies spelling words for round generation.
type WordSource interface {
	RandomWords(difficulty, n int) ([]string, error)
}

// GenerateRounds pre-generates the fixed round sequence for a room.
// Difficulty ramps up every three rounds so both players race against
// identical content that gets harder as the match goes on.
func GenerateRounds(src WordSource, rounds int) ([]models.RoundWord, error) {
	out := make([]models.RoundWord, 0, rounds)
	used := make(map[string]bool)

	for round := 0; round < rounds; round++ {
		difficulty := 1 + round/3
		if difficulty > 5 {
			difficulty = 5
		}

		word, err := pickWord(src, difficulty, used)
		if err != nil {
			return nil, fmt.Errorf("failed to pick word for round %d: %w", round, err)
		}
		used[word] = true

		options, correctIdx := buildOptions(word)
		out = append(out, models.RoundWord{
			Word:         word,
			Prompt:       fmt.Sprintf("Round %d: pick the correct spelling", round+1),
			Options:      options,
			CorrectIndex: correctIdx,
		})
	}
	return out, nil
}

// pickWord draws an unused word at the given difficulty, retrying a few
// times before accepting a repeat from a small bank.
func pickWord(src WordSource, difficulty int, used map[string]bool) (string, error) {
	var last string
	for attempt := 0; attempt < 8; attempt++ {
		words, err := src.RandomWords(difficulty, 1)
		if err != nil {
			return "", err
		}
		if len(words) == 0 {
			return "", fmt.Errorf("no words available at difficulty %d", difficulty)
		}
		last = strings.ToLower(strings.TrimSpace(words[0]))
		if !used[last] {
			return last, nil
		}
	}
	return last, nil
}

// buildOptions returns the shuffled option set for a word (the canonical
// spelling plus generated misspellings) and the index of the canonical
// spelling within it.
func buildOptions(word string) ([]string, int) {
	options := []string{word}
	for _, m := range Misspellings(word, models.OptionCount-1) {
		options = append(options, m)
	}

	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	correctIdx := 0
	for i, o := range options {
		if o == word {
			correctIdx = i
			break
		}
	}
	return options, correctIdx
}

// vowelSwaps maps each vowel to plausible substitutes.
var vowelSwaps = map[byte]string{
	'a': "eo", 'e': "ia", 'i': "ey", 'o': "au", 'u': "oe",
}

// Misspellings generates up to n distinct plausible misspellings of
// word: adjacent-letter swaps, doubled letters, dropped letters and
// vowel substitutions.
func Misspellings(word string, n int) []string {
	seen := map[string]bool{word: true}
	var out []string
	add := func(s string) {
		if len(out) < n && len(s) > 0 && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	// Vowel substitutions first, they read the most convincingly.
	for i := 0; i < len(word); i++ {
		if subs, ok := vowelSwaps[word[i]]; ok {
			for j := 0; j < len(subs); j++ {
				add(word[:i] + string(subs[j]) + word[i+1:])
			}
		}
	}
	// Adjacent swaps.
	for i := 0; i+1 < len(word); i++ {
		if word[i] != word[i+1] {
			add(word[:i] + string(word[i+1]) + string(word[i]) + word[i+2:])
		}
	}
	// Doubled letters.
	for i := 0; i < len(word); i++ {
		add(word[:i+1] + string(word[i]) + word[i+1:])
	}
	// Dropped letters.
	if len(word) > 2 {
		for i := 0; i < len(word); i++ {
			add(word[:i] + word[i+1:])
		}
	}
	return out
}

// builtinBank is the fallback word source used when no database-backed
// bank is wired in, keyed by difficulty 1-5.
var builtinBank = map[int][]string{
	1: {"cat", "dog", "sun", "hat", "run", "big", "red", "map", "pen", "cup"},
	2: {"apple", "house", "water", "happy", "light", "plant", "smile", "train", "cloud", "stone"},
	3: {"because", "picture", "morning", "chicken", "kitchen", "weather", "brother", "another", "country", "journey"},
	4: {"beautiful", "necessary", "different", "important", "favourite", "vegetable", "chocolate", "adventure", "dangerous", "surprised"},
	5: {"accommodate", "conscience", "embarrass", "rhythm", "privilege", "maintenance", "miscellaneous", "questionnaire", "occurrence", "pronunciation"},
}

// BankSource is a WordSource backed by the built-in bank.
type BankSource struct{}

func (BankSource) RandomWords(difficulty, n int) ([]string, error) {
	bank, ok := builtinBank[difficulty]
	if !ok {
		return nil, fmt.Errorf("no bank for difficulty %d", difficulty)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, bank[rand.IntN(len(bank))])
	}
	return out, nil
}
