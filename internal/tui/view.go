package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/teamshuffle/internal/flow"
	"github.com/kingrea/teamshuffle/internal/roster"
)

const (
	maxVisiblePlayers = 12
	maxCardColumns    = 3
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	stepActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)
	stepIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#777777")).
			Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F5C542"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FD67F"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	cardStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			MarginRight(1)
	teamNameStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	sloganStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#5B8DEF"))
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)
)

// View renders the current state to a string.
func (a *App) View() string {
	var content, help string
	switch a.flow.Step() {
	case flow.StepConfiguring:
		content = a.renderConfiguring()
		help = "tab switch field · enter continue · esc quit"
	case flow.StepNamingPlayers:
		content = a.renderNaming()
		if a.importing {
			help = "ctrl+s import · esc cancel"
		} else {
			help = "↑/↓ move · enter next · ctrl+o bulk import · ctrl+g generate · esc start over"
		}
	case flow.StepViewingResults:
		content = a.renderResults()
		help = "r reshuffle · p export PNG · d export PDF · esc start over · q quit"
	}

	sections := []string{
		headerStyle.Render("⬡ TEAM SHUFFLE"),
		a.renderSteps(),
		"",
		content,
	}
	if msg := a.flow.Err(); msg != "" {
		sections = append(sections, "", errorStyle.Render(msg))
	}
	if msg := a.flow.Notice(); msg != "" {
		sections = append(sections, "", noticeStyle.Render(msg))
	}
	if a.statusMsg != "" {
		sections = append(sections, "", statusStyle.Render(a.statusMsg))
	}
	sections = append(sections, helpStyle.Render(help))
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (a *App) renderSteps() string {
	labels := []struct {
		step  flow.Step
		label string
	}{
		{flow.StepConfiguring, "1 Configure"},
		{flow.StepNamingPlayers, "2 Players"},
		{flow.StepViewingResults, "3 Results"},
	}
	parts := make([]string, len(labels))
	for i, l := range labels {
		style := stepIdleStyle
		if a.flow.Step() == l.step {
			style = stepActiveStyle
		}
		parts[i] = style.Render(l.label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) renderConfiguring() string {
	lines := make([]string, 0, len(a.configInputs)+2)
	for _, in := range a.configInputs {
		lines = append(lines, in.View())
	}
	cfg := roster.GeneratorConfig{
		PlayersPerTeam: parseCount(a.configInputs[fieldPlayersPerTeam].Value()),
		NumberOfTeams:  parseCount(a.configInputs[fieldNumberOfTeams].Value()),
	}
	lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("Total players: %d", max(0, cfg.TotalRequired()))))
	return strings.Join(lines, "\n")
}

func (a *App) renderNaming() string {
	if a.importing {
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			teamNameStyle.Render("Bulk import"),
			mutedStyle.Render("Separate names with commas, semicolons or new lines."),
			"",
			a.importArea.View(),
		))
	}
	total := len(a.playerInputs)
	filled := total - len(roster.BlankNames(a.flow.Players()))
	start, end := visibleWindow(a.playerFocus, total, maxVisiblePlayers)
	lines := []string{mutedStyle.Render(fmt.Sprintf("%d of %d players named", filled, total)), ""}
	if start > 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("  ↑ %d more", start)))
	}
	for i := start; i < end; i++ {
		lines = append(lines, a.playerInputs[i].View())
	}
	if end < total {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("  ↓ %d more", total-end)))
	}
	return strings.Join(lines, "\n")
}

// visibleWindow picks a [start, end) range of size at most limit that keeps
// focus in view.
func visibleWindow(focus, total, limit int) (int, int) {
	if total <= limit {
		return 0, total
	}
	start := focus - limit/2
	start = max(0, min(start, total-limit))
	return start, start + limit
}

func (a *App) renderResults() string {
	teams := a.flow.Teams()
	var status string
	switch {
	case a.flow.Generating():
		status = fmt.Sprintf("%s Naming teams…", a.spinner.View())
	case a.flow.Exporting():
		status = mutedStyle.Render("Exporting…")
	default:
		status = mutedStyle.Render(fmt.Sprintf("%d teams of %d", len(teams), a.flow.Config().PlayersPerTeam))
	}

	columns := maxCardColumns
	if a.width > 0 {
		columns = max(1, min(maxCardColumns, a.width/30))
	}
	var rows []string
	for start := 0; start < len(teams); start += columns {
		end := min(start+columns, len(teams))
		cards := make([]string, 0, end-start)
		for _, team := range teams[start:end] {
			cards = append(cards, renderTeamCard(team))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{status, ""}, rows...)...)
}

func renderTeamCard(team roster.Team) string {
	lines := []string{
		teamNameStyle.Render(team.Name),
		sloganStyle.Render(team.Slogan),
		"",
	}
	for i, p := range team.Players {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, p.Name))
	}
	return cardStyle.Width(26).Render(strings.Join(lines, "\n"))
}
