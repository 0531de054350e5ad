package clue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Neighbor is one related-word candidate returned by the word service.
type Neighbor struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

type relatedWordsRequest struct {
	Word string `json:"word"`
	K    int    `json:"k"`
}

type relatedWordsResponse struct {
	Word      string     `json:"word"`
	K         int        `json:"k"`
	Neighbors []Neighbor `json:"neighbors"`
}

// WordServiceClient talks to the external word-similarity service. All
// requests carry a bounded timeout so a slow service never blocks a round.
type WordServiceClient struct {
	baseURL string
	topK    int
	client  *http.Client
}

func NewWordServiceClient(baseURL string, timeout time.Duration, topK int) *WordServiceClient {
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	if topK <= 0 {
		topK = 10
	}
	return &WordServiceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		topK:    topK,
		client:  &http.Client{Timeout: timeout},
	}
}

// RelatedWords returns up to k neighbors for the given word.
func (c *WordServiceClient) RelatedWords(ctx context.Context, word string, k int) ([]Neighbor, error) {
	if k <= 0 {
		k = c.topK
	}

	body, err := json.Marshal(relatedWordsRequest{Word: word, K: k})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/related-words", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("word service request failed with status %d", resp.StatusCode)
	}

	var payload relatedWordsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("word service response malformed: %w", err)
	}
	if payload.Neighbors == nil {
		return nil, fmt.Errorf("word service response malformed: missing neighbors")
	}
	return payload.Neighbors, nil
}
