// Package clue provides the optional AI clue oracle: given a team's secret
// words and the current 3-digit code, it suggests three clue strings. The
// oracle is injected into the game engine as a capability; when it is absent
// or fails, callers fall back to a deterministic truncation of the secret word.
package clue

import (
	"context"
	"strings"

	"github.com/cluecrypt/gameserver/words"
)

// MaxClueLen is the maximum clue length in runes.
const MaxClueLen = 10

// DeductionEntry is one historical row of cracked clue assignments for a team,
// passed to the oracle as conversation context.
type DeductionEntry struct {
	Round    int            `json:"round"`
	ByNumber map[int]string `json:"byNumber"`
}

// Input carries everything the oracle may read. It is a snapshot; the oracle
// never touches live room state.
type Input struct {
	SecretWords []words.Slot
	Code        [3]int
	History     []DeductionEntry
}

// Oracle produces three clue suggestions for a code. Implementations must
// honor the context deadline; a stuck oracle must never stall the game.
type Oracle interface {
	GenerateClues(ctx context.Context, input Input) ([3]string, error)
}

// Trim normalizes a clue: surrounding whitespace removed, at most MaxClueLen runes.
func Trim(value string) string {
	trimmed := []rune(strings.TrimSpace(value))
	if len(trimmed) > MaxClueLen {
		trimmed = trimmed[:MaxClueLen]
	}
	return string(trimmed)
}

// Fallback returns the deterministic substitute clue for a secret word:
// its first two runes.
func Fallback(word string) string {
	r := []rune(word)
	if len(r) > 2 {
		r = r[:2]
	}
	return Trim(string(r))
}

// FallbackClues builds the full fallback triple for a code against the
// given secret word slots.
func FallbackClues(secretWords []words.Slot, code [3]int) [3]string {
	byIndex := make(map[int]string, len(secretWords))
	for _, slot := range secretWords {
		byIndex[slot.Index] = slot.Word
	}
	var clues [3]string
	for i, digit := range code {
		clues[i] = Fallback(byIndex[digit])
	}
	return clues
}
