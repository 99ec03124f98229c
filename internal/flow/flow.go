// internal/flow/flow.go
//
// The flow controller is the single owner of team-shuffle state. It walks the
// user through three steps:
//
//  1. Configuring      - choose players per team and number of teams
//  2. Naming players   - type or bulk-import a name for every roster slot
//  3. Viewing results  - shuffled teams, reshuffle, export
//
// The controller is synchronous and lock-free: the caller (the TUI update loop
// or the headless command) drives one operation at a time. Slow work such as
// naming teams happens outside; the controller hands out an IdentityRequest
// tagged with a generation number and only accepts the answer while that
// generation is still on screen.

package flow

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kingrea/teamshuffle/internal/identity"
	"github.com/kingrea/teamshuffle/internal/roster"
	"github.com/kingrea/teamshuffle/internal/shuffle"
)

// Step identifies which screen the flow is on.
type Step int

const (
	StepConfiguring Step = iota
	StepNamingPlayers
	StepViewingResults
)

// String returns the display name of the step.
func (s Step) String() string {
	switch s {
	case StepConfiguring:
		return "Configuring"
	case StepNamingPlayers:
		return "Naming Players"
	case StepViewingResults:
		return "Viewing Results"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

var (
	// ErrIncompleteConfig reports a configuration that cannot start naming.
	ErrIncompleteConfig = errors.New("flow: incomplete configuration")
	// ErrBlankNames reports roster slots without a name at generation time.
	ErrBlankNames = errors.New("flow: blank player names")
	// ErrNothingToImport reports bulk-import text with no usable names.
	ErrNothingToImport = errors.New("flow: no names to import")
	// ErrWrongStep reports an operation invoked from the wrong step.
	ErrWrongStep = errors.New("flow: operation not available in this step")
	// ErrExportBusy reports an export started while another is running.
	ErrExportBusy = errors.New("flow: export already in progress")
)

// IdentityRequest carries the teams of one generation to a namer.
type IdentityRequest struct {
	Generation uint64
	Teams      []roster.Team
}

// Option customizes a Controller.
type Option func(*Controller)

// WithSource overrides the randomness source used for shuffling.
func WithSource(src shuffle.Source) Option {
	return func(c *Controller) {
		if src != nil {
			c.source = src
		}
	}
}

// WithPasses overrides the number of shuffle passes.
func WithPasses(passes int) Option {
	return func(c *Controller) {
		if passes > 0 {
			c.passes = passes
		}
	}
}

// WithIDGenerator overrides how player IDs are minted.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// WithLogger attaches a logger for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDefaults pre-fills the generator configuration.
func WithDefaults(cfg roster.GeneratorConfig) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

// Controller owns the players, teams and step of one session.
type Controller struct {
	cfg     roster.GeneratorConfig
	step    Step
	players []roster.Player
	teams   []roster.Team

	generation uint64
	named      bool
	generating bool
	exporting  bool
	exportSeq  uint64

	errMsg string
	notice string

	source shuffle.Source
	passes int
	newID  func() string
	logger *zap.Logger
}

// New creates a controller in the Configuring step.
func New(opts ...Option) *Controller {
	c := &Controller{
		cfg:    roster.GeneratorConfig{PlayersPerTeam: 2, NumberOfTeams: 2},
		step:   StepConfiguring,
		source: shuffle.Crypto(),
		passes: shuffle.DefaultPasses,
		newID:  roster.NewID,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Step returns the current step.
func (c *Controller) Step() Step { return c.step }

// Config returns the current generator configuration.
func (c *Controller) Config() roster.GeneratorConfig { return c.cfg }

// Players returns a copy of the roster.
func (c *Controller) Players() []roster.Player {
	return append([]roster.Player(nil), c.players...)
}

// Teams returns a copy of the current teams.
func (c *Controller) Teams() []roster.Team { return roster.CloneTeams(c.teams) }

// Generation identifies the team list currently shown.
func (c *Controller) Generation() uint64 { return c.generation }

// Generating reports whether an identity request is outstanding.
func (c *Controller) Generating() bool { return c.generating }

// Exporting reports whether an export is running.
func (c *Controller) Exporting() bool { return c.exporting }

// Err returns the user-facing validation message, if any.
func (c *Controller) Err() string { return c.errMsg }

// Notice returns the user-facing informational message, if any.
func (c *Controller) Notice() string { return c.notice }

func (c *Controller) fail(err error, message string) error {
	c.errMsg = message
	c.logger.Debug("flow validation failed", zap.Stringer("step", c.step), zap.Error(err))
	return err
}

func (c *Controller) clearMessages() {
	c.errMsg = ""
	c.notice = ""
}

func (c *Controller) requireStep(op string, allowed ...Step) error {
	for _, s := range allowed {
		if c.step == s {
			return nil
		}
	}
	err := fmt.Errorf("%w: %s during %s", ErrWrongStep, op, c.step)
	c.errMsg = fmt.Sprintf("Cannot %s right now.", op)
	return err
}

var configMessage = fmt.Sprintf("Please choose at least 1 player per team, at least %d teams and at most %d players.", roster.MinTeams, roster.MaxPlayers)

// Configure stores the generator configuration.
func (c *Controller) Configure(cfg roster.GeneratorConfig) error {
	if err := c.requireStep("configure teams", StepConfiguring); err != nil {
		return err
	}
	c.cfg = cfg
	if err := cfg.Validate(); err != nil {
		return c.fail(fmt.Errorf("%w: %w", ErrIncompleteConfig, err), configMessage)
	}
	c.clearMessages()
	return nil
}

// StartNaming allocates a blank roster and moves to the naming step.
func (c *Controller) StartNaming() error {
	if err := c.requireStep("start naming players", StepConfiguring); err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return c.fail(fmt.Errorf("%w: %w", ErrIncompleteConfig, err), configMessage)
	}
	c.players = roster.NewRoster(c.cfg.TotalRequired(), c.newID)
	c.teams = nil
	c.step = StepNamingPlayers
	c.clearMessages()
	c.logger.Info("roster allocated",
		zap.Int("players", len(c.players)),
		zap.Int("players_per_team", c.cfg.PlayersPerTeam),
		zap.Int("teams", c.cfg.NumberOfTeams),
	)
	return nil
}

// SetPlayerName edits the name in slot index.
func (c *Controller) SetPlayerName(index int, name string) error {
	if err := c.requireStep("edit players", StepNamingPlayers); err != nil {
		return err
	}
	if index < 0 || index >= len(c.players) {
		return fmt.Errorf("flow: player index %d out of range [0,%d)", index, len(c.players))
	}
	c.players[index].Name = name
	return nil
}

// Import assigns names parsed from text to the roster slots in order. Fewer
// names than slots is not an error; the notice reports how many were used.
func (c *Controller) Import(text string) error {
	if err := c.requireStep("import names", StepNamingPlayers); err != nil {
		return err
	}
	names := roster.ParseNames(text)
	if len(names) == 0 {
		return c.fail(ErrNothingToImport, "No names found to import.")
	}
	players, applied := roster.AssignNames(c.players, names)
	c.players = players
	c.clearMessages()
	if missing := len(players) - applied; missing > 0 {
		c.notice = fmt.Sprintf("Imported %d names. Fill in the remaining %d manually.", applied, missing)
	} else {
		c.notice = fmt.Sprintf("Imported %d names.", applied)
	}
	c.logger.Info("names imported",
		zap.Int("parsed", len(names)),
		zap.Int("applied", applied),
		zap.Int("slots", len(players)),
	)
	return nil
}

// Generate shuffles the roster into teams, shows them with placeholder
// identities and returns the request the caller should hand to a namer.
func (c *Controller) Generate() (IdentityRequest, error) {
	if err := c.requireStep("generate teams", StepNamingPlayers, StepViewingResults); err != nil {
		return IdentityRequest{}, err
	}
	if blanks := roster.BlankNames(c.players); len(blanks) > 0 {
		return IdentityRequest{}, c.fail(
			fmt.Errorf("%w: %d missing", ErrBlankNames, len(blanks)),
			fmt.Sprintf("Please fill in all player names (%d missing).", len(blanks)),
		)
	}
	normalized := make([]roster.Player, len(c.players))
	for i, p := range c.players {
		normalized[i] = roster.Player{ID: p.ID, Name: strings.TrimSpace(p.Name)}
	}
	shuffled := shuffle.Shuffle(normalized, c.passes, c.source)
	teams, err := roster.Partition(shuffled, c.cfg)
	if err != nil {
		return IdentityRequest{}, c.fail(err, "Could not build teams from this roster.")
	}

	c.generation++
	c.teams = teams
	c.named = false
	c.generating = true
	c.step = StepViewingResults
	c.errMsg = ""
	c.logger.Info("teams generated",
		zap.Uint64("generation", c.generation),
		zap.Int("teams", len(teams)),
		zap.Int("passes", c.passes),
	)
	return IdentityRequest{Generation: c.generation, Teams: roster.CloneTeams(teams)}, nil
}

// Reshuffle repeats Generate from the results screen.
func (c *Controller) Reshuffle() (IdentityRequest, error) {
	if err := c.requireStep("reshuffle", StepViewingResults); err != nil {
		return IdentityRequest{}, err
	}
	return c.Generate()
}

// ApplyIdentities patches names and slogans onto the teams of generation gen.
// Responses for any other generation, or a second response for the same one,
// are dropped. It reports whether the identities were applied.
func (c *Controller) ApplyIdentities(gen uint64, ids []*identity.Identity) bool {
	if gen != c.generation || c.step != StepViewingResults || c.named {
		c.logger.Debug("discarding stale identities",
			zap.Uint64("generation", gen),
			zap.Uint64("current", c.generation),
		)
		return false
	}
	teams := roster.CloneTeams(c.teams)
	for i := range teams {
		if i >= len(ids) || ids[i] == nil {
			continue
		}
		name := strings.TrimSpace(ids[i].Name)
		slogan := strings.TrimSpace(ids[i].Slogan)
		if name == "" && slogan == "" {
			continue
		}
		if name != "" {
			teams[i].Name = name
		}
		if slogan == "" {
			slogan = identity.FallbackSlogan
		}
		teams[i].Slogan = slogan
	}
	c.teams = teams
	c.named = true
	c.generating = false
	c.logger.Info("team identities applied", zap.Uint64("generation", gen))
	return true
}

// Reset returns to the Configuring step and discards players and teams. Any
// outstanding identity response or export result becomes stale.
func (c *Controller) Reset() {
	c.step = StepConfiguring
	c.players = nil
	c.teams = nil
	c.generation++
	c.named = false
	c.generating = false
	c.exporting = false
	c.exportSeq++
	c.clearMessages()
	c.logger.Info("flow reset")
}

// DismissMessages clears the current error and notice.
func (c *Controller) DismissMessages() {
	c.clearMessages()
}

// BeginExport marks an export as running and returns the token its result
// must be reported with.
func (c *Controller) BeginExport() (uint64, error) {
	if err := c.requireStep("export", StepViewingResults); err != nil {
		return 0, err
	}
	if c.exporting {
		return 0, ErrExportBusy
	}
	c.exportSeq++
	c.exporting = true
	return c.exportSeq, nil
}

// EndExport reports the export started with token. Only the current export
// clears the busy flag; results from before a Reset are logged and dropped.
// A failure is logged only. It reports whether token was current.
func (c *Controller) EndExport(token uint64, path string, err error) bool {
	current := c.exporting && token == c.exportSeq
	if current {
		c.exporting = false
	}
	if err != nil {
		c.logger.Error("export failed", zap.Uint64("export", token), zap.Error(err))
	} else {
		c.logger.Info("export written", zap.Uint64("export", token), zap.String("path", path))
	}
	return current
}
