package http

import (
	"context"
	"net/http"

	"github.com/upsight-lab/copilot/pkg/domain/types"
)

// ownerHeader carries the authenticated tenant identity, injected by
// the gateway in front of this service.
const ownerHeader = "X-Owner-ID"

type ctxOwnerKey struct{}

// requireOwner rejects API requests without an owner identity
func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := types.OwnerID(r.Header.Get(ownerHeader))
		if err := ownerID.Validate(); err != nil {
			http.Error(w, "missing or invalid "+ownerHeader+" header", http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), ctxOwnerKey{}, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFrom(ctx context.Context) types.OwnerID {
	ownerID, _ := ctx.Value(ctxOwnerKey{}).(types.OwnerID)
	return ownerID
}
