package clue

import (
	"context"
	"math/rand"
)

// Generator is the word-service backed Oracle. For each code digit it fetches
// related words for the matching secret word and picks one at random; any
// per-word failure degrades to the deterministic fallback clue.
type Generator struct {
	client *WordServiceClient
	topK   int
}

func NewGenerator(client *WordServiceClient, topK int) *Generator {
	if topK <= 0 {
		topK = 10
	}
	return &Generator{client: client, topK: topK}
}

func (g *Generator) GenerateClues(ctx context.Context, input Input) ([3]string, error) {
	byIndex := make(map[int]string, len(input.SecretWords))
	for _, slot := range input.SecretWords {
		byIndex[slot.Index] = slot.Word
	}

	var clues [3]string
	for i, digit := range input.Code {
		word := byIndex[digit]
		if word == "" {
			continue
		}
		clues[i] = g.clueFor(ctx, word)
	}
	return clues, nil
}

func (g *Generator) clueFor(ctx context.Context, word string) string {
	neighbors, err := g.client.RelatedWords(ctx, word, g.topK)
	if err != nil {
		return Fallback(word)
	}

	candidates := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		if c := Trim(n.Word); c != "" {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return Fallback(word)
	}
	return candidates[rand.Intn(len(candidates))]
}

var _ Oracle = (*Generator)(nil)
