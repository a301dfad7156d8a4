package interfaces

import (
	"context"

	"github.com/upsight-lab/copilot/pkg/domain/model"
)

// RetrievalClient searches the external document retrieval service.
// Results are ephemeral and consumed once per turn. An error means the
// service is unavailable; callers treat that as missing grounding, not
// as a turn failure.
type RetrievalClient interface {
	Search(ctx context.Context, query string, limit int) ([]*model.DocumentMatch, error)
}
