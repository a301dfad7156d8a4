package retrieval

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/upsight-lab/copilot/pkg/domain/interfaces"
	"github.com/upsight-lab/copilot/pkg/domain/model"
)

const defaultTimeout = 5 * time.Second

// Client is a thin client for the external document retrieval service.
// One best-effort attempt per query with a short timeout; resilience is
// the caller's job (unavailable retrieval degrades the turn, it never
// aborts it).
type Client struct {
	http *resty.Client
}

var _ interfaces.RetrievalClient = &Client{}

type Option func(*Client)

// WithTimeout overrides the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

func New(baseURL string, opts ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(defaultTimeout)

	c := &Client{http: httpClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchChunk struct {
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

type searchResult struct {
	DocID  string        `json:"doc_id"`
	Chunks []searchChunk `json:"chunks"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// Search returns up to limit ranked document matches for the query.
// An empty result set is a healthy answer; an error means the service
// is unreachable or misbehaving.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]*model.DocumentMatch, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&searchRequest{Query: query, Limit: limit}).
		Post("/search")
	if err != nil {
		return nil, goerr.Wrap(err, "retrieval search request failed")
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, goerr.New("retrieval search returned non-OK status",
			goerr.V("status", resp.StatusCode()),
		)
	}

	var body searchResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, goerr.Wrap(err, "failed to decode retrieval search response")
	}

	matches := make([]*model.DocumentMatch, 0, len(body.Results))
	for _, result := range body.Results {
		match := &model.DocumentMatch{
			DocumentID: result.DocID,
			Chunks:     make([]model.PassageChunk, len(result.Chunks)),
		}
		for i, chunk := range result.Chunks {
			match.Chunks[i] = model.PassageChunk{
				ChunkIndex: chunk.ChunkIndex,
				Content:    chunk.Content,
				Score:      chunk.Score,
			}
		}
		matches = append(matches, match)
	}

	return matches, nil
}
