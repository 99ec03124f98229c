// internal/tui/app.go
//
// This is the terminal UI for teamshuffle. It uses bubbletea, which follows
// The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// All session state lives in a flow.Controller; the App only keeps widget
// state (text inputs, focus, spinner). Naming teams and exporting run as
// tea.Cmds off the update loop and report back with messages.

package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kingrea/teamshuffle/internal/export"
	"github.com/kingrea/teamshuffle/internal/flow"
	"github.com/kingrea/teamshuffle/internal/identity"
)

const (
	fieldPlayersPerTeam = iota
	fieldNumberOfTeams
)

// identitiesMsg delivers the namer's answer for one generation.
type identitiesMsg struct {
	generation uint64
	ids        []*identity.Identity
}

// exportFinishedMsg reports the outcome of an export command.
type exportFinishedMsg struct {
	token uint64
	kind  export.Kind
	path  string
	err   error
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithNamer sets the identity namer. It should already be wrapped with
// identity.Resilient.
func WithNamer(namer identity.Namer) AppOption {
	return func(a *App) {
		if namer != nil {
			a.namer = namer
		}
	}
}

// WithExporter sets where exports are written.
func WithExporter(exp *export.Exporter) AppOption {
	return func(a *App) {
		if exp != nil {
			a.exporter = exp
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithContext sets the parent context for identity requests.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	flow     *flow.Controller
	namer    identity.Namer
	exporter *export.Exporter
	logger   *zap.Logger
	ctx      context.Context

	// UI components
	configInputs []textinput.Model
	configFocus  int
	playerInputs []textinput.Model
	playerFocus  int
	importing    bool
	importArea   textarea.Model
	spinner      spinner.Model
	statusMsg    string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp creates a new App around ctrl.
func NewApp(ctrl *flow.Controller, opts ...AppOption) *App {
	if ctrl == nil {
		ctrl = flow.New()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	area := textarea.New()
	area.Placeholder = "Alice, Bob; Carol\nDave"
	area.ShowLineNumbers = false
	area.SetWidth(60)
	area.SetHeight(6)

	app := &App{
		flow:       ctrl,
		namer:      identity.Resilient(nil, 0, nil),
		exporter:   export.New("."),
		logger:     zap.NewNop(),
		ctx:        context.Background(),
		importArea: area,
		spinner:    sp,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.buildConfigInputs()
	return app
}

// Controller exposes the flow state behind the UI.
func (a *App) Controller() *flow.Controller { return a.flow }

func (a *App) buildConfigInputs() {
	cfg := a.flow.Config()
	labels := []string{"Players per team: ", "Number of teams:  "}
	values := []int{cfg.PlayersPerTeam, cfg.NumberOfTeams}
	a.configInputs = make([]textinput.Model, len(labels))
	for i := range labels {
		in := textinput.New()
		in.Prompt = labels[i]
		in.CharLimit = 4
		in.Width = 6
		if values[i] > 0 {
			in.SetValue(strconv.Itoa(values[i]))
		}
		a.configInputs[i] = in
	}
	a.configFocus = fieldPlayersPerTeam
	a.configInputs[a.configFocus].Focus()
}

func (a *App) buildPlayerInputs() {
	players := a.flow.Players()
	width := len(strconv.Itoa(len(players)))
	a.playerInputs = make([]textinput.Model, len(players))
	for i, p := range players {
		in := textinput.New()
		in.Prompt = fmt.Sprintf("%*d. ", width, i+1)
		in.Placeholder = "Player name"
		in.CharLimit = 64
		in.Width = 32
		in.SetValue(p.Name)
		a.playerInputs[i] = in
	}
	a.playerFocus = 0
	if len(a.playerInputs) > 0 {
		a.playerInputs[0].Focus()
	}
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.importArea.SetWidth(max(20, min(80, msg.Width-8)))
		return a, nil

	case identitiesMsg:
		if a.flow.ApplyIdentities(msg.generation, msg.ids) {
			a.statusMsg = "Teams are ready."
		}
		return a, nil

	case exportFinishedMsg:
		if !a.flow.EndExport(msg.token, msg.path, msg.err) {
			return a, nil
		}
		if msg.err != nil {
			a.statusMsg = fmt.Sprintf("%s export failed.", strings.ToUpper(string(msg.kind)))
		} else {
			a.statusMsg = fmt.Sprintf("Saved %s", msg.path)
		}
		return a, nil

	case spinner.TickMsg:
		if !a.flow.Generating() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.flow.Step() {
		case flow.StepConfiguring:
			return a.updateConfiguring(msg)
		case flow.StepNamingPlayers:
			return a.updateNaming(msg)
		case flow.StepViewingResults:
			return a.updateResults(msg)
		}
	}

	return a, nil
}

func (a *App) updateConfiguring(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return a, tea.Quit
	case "tab", "down", "shift+tab", "up":
		a.configInputs[a.configFocus].Blur()
		a.configFocus = (a.configFocus + 1) % len(a.configInputs)
		return a, a.configInputs[a.configFocus].Focus()
	case "enter":
		return a.submitConfig()
	}
	var cmd tea.Cmd
	a.configInputs[a.configFocus], cmd = a.configInputs[a.configFocus].Update(msg)
	return a, cmd
}

func (a *App) submitConfig() (tea.Model, tea.Cmd) {
	cfg := a.flow.Config()
	cfg.PlayersPerTeam = parseCount(a.configInputs[fieldPlayersPerTeam].Value())
	cfg.NumberOfTeams = parseCount(a.configInputs[fieldNumberOfTeams].Value())
	if err := a.flow.Configure(cfg); err != nil {
		return a, nil
	}
	if err := a.flow.StartNaming(); err != nil {
		return a, nil
	}
	a.statusMsg = ""
	a.buildPlayerInputs()
	return a, textinput.Blink
}

func parseCount(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func (a *App) updateNaming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.importing {
		return a.updateImport(msg)
	}
	switch msg.String() {
	case "esc":
		return a.reset()
	case "ctrl+o":
		a.importing = true
		a.importArea.Reset()
		a.flow.DismissMessages()
		return a, a.importArea.Focus()
	case "ctrl+g":
		return a.generate()
	case "tab", "down":
		return a, a.focusPlayer(a.playerFocus + 1)
	case "shift+tab", "up":
		return a, a.focusPlayer(a.playerFocus - 1)
	case "enter":
		if a.playerFocus == len(a.playerInputs)-1 {
			return a.generate()
		}
		return a, a.focusPlayer(a.playerFocus + 1)
	}
	if len(a.playerInputs) == 0 {
		return a, nil
	}
	var cmd tea.Cmd
	a.playerInputs[a.playerFocus], cmd = a.playerInputs[a.playerFocus].Update(msg)
	if err := a.flow.SetPlayerName(a.playerFocus, a.playerInputs[a.playerFocus].Value()); err != nil {
		a.logger.Warn("player edit rejected", zap.Error(err))
	}
	return a, cmd
}

func (a *App) focusPlayer(idx int) tea.Cmd {
	n := len(a.playerInputs)
	if n == 0 {
		return nil
	}
	idx = ((idx % n) + n) % n
	a.playerInputs[a.playerFocus].Blur()
	a.playerFocus = idx
	return a.playerInputs[idx].Focus()
}

func (a *App) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.importing = false
		a.importArea.Blur()
		return a, nil
	case "ctrl+s":
		if err := a.flow.Import(a.importArea.Value()); err != nil {
			return a, nil
		}
		a.importing = false
		a.importArea.Blur()
		a.buildPlayerInputs()
		return a, textinput.Blink
	}
	var cmd tea.Cmd
	a.importArea, cmd = a.importArea.Update(msg)
	return a, cmd
}

func (a *App) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "esc", "n":
		return a.reset()
	case "r":
		return a.generate()
	case "p":
		return a, a.startExport(export.KindPNG)
	case "d":
		return a, a.startExport(export.KindPDF)
	}
	return a, nil
}

// generate runs a generation (or reshuffle) and kicks off the identity request.
func (a *App) generate() (tea.Model, tea.Cmd) {
	req, err := a.flow.Generate()
	if err != nil {
		return a, nil
	}
	a.statusMsg = ""
	for i := range a.playerInputs {
		a.playerInputs[i].Blur()
	}
	return a, tea.Batch(a.requestIdentities(req), a.spinner.Tick)
}

func (a *App) requestIdentities(req flow.IdentityRequest) tea.Cmd {
	ctx := a.ctx
	namer := a.namer
	return func() tea.Msg {
		return identitiesMsg{
			generation: req.Generation,
			ids:        flow.RequestIdentities(ctx, namer, req),
		}
	}
}

func (a *App) startExport(kind export.Kind) tea.Cmd {
	token, err := a.flow.BeginExport()
	if err != nil {
		a.statusMsg = "An export is already running."
		return nil
	}
	a.statusMsg = fmt.Sprintf("Exporting %s…", strings.ToUpper(string(kind)))
	teams := a.flow.Teams()
	exporter := a.exporter
	return func() tea.Msg {
		path, err := exporter.Export(kind, teams)
		return exportFinishedMsg{token: token, kind: kind, path: path, err: err}
	}
}

func (a *App) reset() (tea.Model, tea.Cmd) {
	a.flow.Reset()
	a.playerInputs = nil
	a.playerFocus = 0
	a.importing = false
	a.importArea.Reset()
	a.importArea.Blur()
	a.statusMsg = ""
	a.buildConfigInputs()
	return a, textinput.Blink
}
