package identity

import (
	"context"
	"fmt"

	"github.com/kingrea/teamshuffle/internal/roster"
)

const (
	// FallbackSlogan accompanies every fallback team name.
	FallbackSlogan = "Ready for action!"
)

// Identity is a creative name and slogan for one team.
type Identity struct {
	Name   string `json:"name"`
	Slogan string `json:"slogan"`
}

// Namer produces identities for teams. The result is indexed like teams; a nil
// entry means "keep the placeholder".
type Namer interface {
	Name(ctx context.Context, teams []roster.Team) ([]*Identity, error)
}

// NamerFunc adapts a function to the Namer interface.
type NamerFunc func(ctx context.Context, teams []roster.Team) ([]*Identity, error)

// Name calls f.
func (f NamerFunc) Name(ctx context.Context, teams []roster.Team) ([]*Identity, error) {
	return f(ctx, teams)
}

// FallbackName is the deterministic name for the team at index.
func FallbackName(index int) string {
	return fmt.Sprintf("Squad %d", index+1)
}

// Fallback returns n deterministic identities.
func Fallback(n int) []*Identity {
	out := make([]*Identity, n)
	for i := range out {
		out[i] = &Identity{Name: FallbackName(i), Slogan: FallbackSlogan}
	}
	return out
}
