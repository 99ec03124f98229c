package flow

import (
	"context"

	"github.com/kingrea/teamshuffle/internal/identity"
)

// Resolve runs req through namer and applies the result. namer should already
// be wrapped with identity.Resilient; any error it still returns is treated as
// a request for fallback identities.
func (c *Controller) Resolve(ctx context.Context, namer identity.Namer, req IdentityRequest) bool {
	return c.ApplyIdentities(req.Generation, RequestIdentities(ctx, namer, req))
}

// RequestIdentities calls namer for req without touching controller state, so
// it can run off the update loop.
func RequestIdentities(ctx context.Context, namer identity.Namer, req IdentityRequest) []*identity.Identity {
	if namer == nil {
		return identity.Fallback(len(req.Teams))
	}
	ids, err := namer.Name(ctx, req.Teams)
	if err != nil {
		return identity.Fallback(len(req.Teams))
	}
	return ids
}
