// internal/roster/roster.go
//
// Players, teams and the generator configuration, plus the pure helpers the
// flow controller composes: roster allocation, bulk-import parsing, positional
// name assignment and team partitioning.

package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// PlaceholderSlogan is shown until an identity result arrives.
	PlaceholderSlogan = "Shuffling the deck..."

	// MinTeams is the smallest team count a generation accepts.
	MinTeams = 2

	// MaxPlayers caps the roster size of one generation.
	MaxPlayers = 10000
)

// ErrInvalidConfig reports a generator configuration that cannot produce teams.
var ErrInvalidConfig = errors.New("roster: invalid generator config")

// Player is one roster slot. ID never changes once allocated.
type Player struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Team is one generated group. Players are fixed once the team is created.
type Team struct {
	ID      int      `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Slogan  string   `json:"slogan" yaml:"slogan"`
	Players []Player `json:"players" yaml:"players"`
}

// MemberNames lists the team's player names in roster order.
func (t Team) MemberNames() []string {
	names := make([]string, len(t.Players))
	for i, p := range t.Players {
		names[i] = p.Name
	}
	return names
}

// GeneratorConfig sizes a generation.
type GeneratorConfig struct {
	PlayersPerTeam int `json:"players_per_team" yaml:"players_per_team"`
	NumberOfTeams  int `json:"number_of_teams" yaml:"number_of_teams"`
}

// TotalRequired is the number of players a generation consumes.
func (c GeneratorConfig) TotalRequired() int {
	return c.PlayersPerTeam * c.NumberOfTeams
}

// Validate checks the sizing rules for a generation.
func (c GeneratorConfig) Validate() error {
	switch {
	case c.PlayersPerTeam < 1:
		return fmt.Errorf("%w: players per team must be at least 1", ErrInvalidConfig)
	case c.NumberOfTeams < MinTeams:
		return fmt.Errorf("%w: need at least %d teams", ErrInvalidConfig, MinTeams)
	case c.PlayersPerTeam > MaxPlayers/c.NumberOfTeams:
		// Checked by division so huge inputs cannot overflow TotalRequired.
		return fmt.Errorf("%w: at most %d players in total", ErrInvalidConfig, MaxPlayers)
	case c.TotalRequired() < 2:
		return fmt.Errorf("%w: need at least 2 players in total", ErrInvalidConfig)
	}
	return nil
}

// NewID returns a fresh player identifier.
func NewID() string {
	return uuid.NewString()
}

// NewRoster allocates n blank players. A nil newID uses NewID.
func NewRoster(n int, newID func() string) []Player {
	if n <= 0 {
		return nil
	}
	if newID == nil {
		newID = NewID
	}
	players := make([]Player, n)
	for i := range players {
		players[i] = Player{ID: newID()}
	}
	return players
}

// PlaceholderName is the label a team carries before it is named.
func PlaceholderName(id int) string {
	return fmt.Sprintf("Team %d", id+1)
}

// ParseNames splits bulk-import text on any run of commas, semicolons or line
// breaks, trims each token and drops empty ones.
func ParseNames(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ',', ';', '\n', '\r':
			return true
		}
		return false
	})
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		if name := strings.TrimSpace(field); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// AssignNames fills players positionally from names and returns the updated
// copy plus the number of names used. Surplus names are discarded; slots past
// the last supplied name are left blank.
func AssignNames(players []Player, names []string) ([]Player, int) {
	out := make([]Player, len(players))
	applied := 0
	for i, p := range players {
		p.Name = ""
		if i < len(names) {
			p.Name = names[i]
			applied++
		}
		out[i] = p
	}
	return out, applied
}

// BlankNames returns the indices of players whose trimmed name is empty.
func BlankNames(players []Player) []int {
	var blanks []int
	for i, p := range players {
		if strings.TrimSpace(p.Name) == "" {
			blanks = append(blanks, i)
		}
	}
	return blanks
}

// Partition slices an already-shuffled roster into cfg.NumberOfTeams
// contiguous chunks of cfg.PlayersPerTeam, each with a placeholder identity.
func Partition(players []Player, cfg GeneratorConfig) ([]Team, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(players) != cfg.TotalRequired() {
		return nil, fmt.Errorf("roster: partition needs %d players, got %d", cfg.TotalRequired(), len(players))
	}
	teams := make([]Team, cfg.NumberOfTeams)
	for id := range teams {
		start := id * cfg.PlayersPerTeam
		members := make([]Player, cfg.PlayersPerTeam)
		copy(members, players[start:start+cfg.PlayersPerTeam])
		teams[id] = Team{
			ID:      id,
			Name:    PlaceholderName(id),
			Slogan:  PlaceholderSlogan,
			Players: members,
		}
	}
	return teams, nil
}

// CloneTeams deep-copies teams so callers cannot mutate shared player slices.
func CloneTeams(teams []Team) []Team {
	if teams == nil {
		return nil
	}
	out := make([]Team, len(teams))
	for i, t := range teams {
		t.Players = append([]Player(nil), t.Players...)
		out[i] = t
	}
	return out
}
