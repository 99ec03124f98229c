package identity

import (
	"context"
	"fmt"

	"github.com/kingrea/teamshuffle/internal/roster"
	"github.com/kingrea/teamshuffle/internal/shuffle"
)

var (
	adjectives = []string{
		"Atomic", "Blazing", "Bold", "Brave", "Cosmic", "Crimson", "Electric",
		"Fearless", "Golden", "Iron", "Lucky", "Midnight", "Mighty", "Neon",
		"Phantom", "Rapid", "Rogue", "Savage", "Silent", "Stellar", "Thunder",
		"Turbo", "Wild", "Wicked",
	}
	mascots = []string{
		"Badgers", "Comets", "Coyotes", "Dragons", "Eagles", "Falcons", "Foxes",
		"Hawks", "Hornets", "Jaguars", "Krakens", "Lions", "Lynxes", "Otters",
		"Owls", "Panthers", "Rhinos", "Sharks", "Titans", "Vipers", "Wolves",
		"Yetis",
	}
	slogans = []string{
		"Fortune favors the shuffled.",
		"Built by chance, bound by glory.",
		"No plan, no problem.",
		"Strength in random numbers.",
		"We came, we drew, we conquered.",
		"Born from the deck.",
		"Luck is a skill.",
		"Here to win, there by chance.",
		"Stacked by fate.",
		"One roll away from greatness.",
	}
)

// Local names teams offline from built-in word lists. Names within one call
// are unique.
type Local struct {
	src shuffle.Source
}

// NewLocal returns a Local namer drawing from src. A nil src uses shuffle.Crypto.
func NewLocal(src shuffle.Source) *Local {
	if src == nil {
		src = shuffle.Crypto()
	}
	return &Local{src: src}
}

// Name implements Namer.
func (l *Local) Name(ctx context.Context, teams []roster.Team) ([]*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	adj := shuffle.Shuffle(adjectives, 1, l.src)
	mas := shuffle.Shuffle(mascots, 1, l.src)
	out := make([]*Identity, len(teams))
	for i := range teams {
		name := fmt.Sprintf("%s %s", adj[i%len(adj)], mas[i%len(mas)])
		if round := i / min(len(adj), len(mas)); round > 0 {
			name = fmt.Sprintf("%s %d", name, round+1)
		}
		out[i] = &Identity{
			Name:   name,
			Slogan: slogans[shuffle.Intn(l.src, len(slogans))],
		}
	}
	return out, nil
}
