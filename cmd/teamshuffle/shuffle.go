package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/teamshuffle/internal/config"
	"github.com/kingrea/teamshuffle/internal/export"
	"github.com/kingrea/teamshuffle/internal/flow"
	"github.com/kingrea/teamshuffle/internal/roster"
	"github.com/kingrea/teamshuffle/internal/shuffle"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

type shuffleOptions struct {
	perTeam   int
	teams     int
	names     string
	namesFile string
	passes    int
	seed      uint64
	seeded    bool
	provider  string
	format    string
	pngPath   string
	pdfPath   string
	exports   []string
}

var shuffleOpts shuffleOptions

var shuffleCmd = &cobra.Command{
	Use:   "shuffle",
	Short: "Shuffle a roster into teams without the TUI",
	Long: `Reads player names from --names, --names-file or stdin, shuffles them
into teams, names the teams and prints the result. Names may be separated by
commas, semicolons or new lines.`,
	Example: `  teamshuffle shuffle --teams 3 --per-team 2 --names "Ann, Bo, Cy, Di, Ed, Flo"
  cat roster.txt | teamshuffle shuffle --teams 4 --per-team 5 --png teams.png`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		shuffleOpts.seeded = cmd.Flags().Changed("seed")
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.logger.Sync() //nolint:errcheck
		if !cmd.Flags().Changed("per-team") {
			shuffleOpts.perTeam = s.cfg.Project.Defaults.PlayersPerTeam
		}
		if !cmd.Flags().Changed("teams") {
			shuffleOpts.teams = s.cfg.Project.Defaults.NumberOfTeams
		}
		return runShuffle(cmd.Context(), s, shuffleOpts, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	f := shuffleCmd.Flags()
	f.IntVarP(&shuffleOpts.perTeam, "per-team", "p", 0, "players per team (defaults to config)")
	f.IntVarP(&shuffleOpts.teams, "teams", "t", 0, "number of teams (defaults to config)")
	f.StringVarP(&shuffleOpts.names, "names", "n", "", "player names separated by commas, semicolons or new lines")
	f.StringVarP(&shuffleOpts.namesFile, "names-file", "f", "", "read player names from a file (- for stdin)")
	f.IntVar(&shuffleOpts.passes, "passes", 0, "shuffle passes (defaults to config)")
	f.Uint64Var(&shuffleOpts.seed, "seed", 0, "seed the shuffle for a reproducible draw")
	f.StringVar(&shuffleOpts.provider, "provider", "", "identity provider: genai, local or none (defaults to config)")
	f.StringVarP(&shuffleOpts.format, "output", "o", formatText, "output format: text or yaml")
	f.StringVar(&shuffleOpts.pngPath, "png", "", "also write a PNG to this path")
	f.StringVar(&shuffleOpts.pdfPath, "pdf", "", "also write a PDF to this path")
	f.StringSliceVar(&shuffleOpts.exports, "export", nil, "write timestamped artifacts (png, pdf) into the export directory")
}

func runShuffle(ctx context.Context, s *session, opts shuffleOptions, stdin io.Reader, out io.Writer) error {
	if opts.format != formatText && opts.format != formatYAML {
		return fmt.Errorf("unknown output format %q", opts.format)
	}
	kinds, err := parseKinds(opts.exports)
	if err != nil {
		return err
	}
	text, err := readNames(opts, stdin)
	if err != nil {
		return err
	}

	namer := s.namer
	if opts.provider != "" {
		switch opts.provider {
		case config.ProviderGenAI, config.ProviderLocal, config.ProviderNone:
		default:
			return fmt.Errorf("unknown identity provider %q", opts.provider)
		}
		provider := opts.provider
		if provider == config.ProviderGenAI && strings.TrimSpace(s.cfg.APIKey) == "" {
			provider = config.ProviderLocal
		}
		namer = buildNamer(ctx, s.cfg, provider, s.logger)
	}

	var flowOpts []flow.Option
	if opts.passes > 0 {
		flowOpts = append(flowOpts, flow.WithPasses(opts.passes))
	}
	if opts.seeded {
		flowOpts = append(flowOpts, flow.WithSource(shuffle.NewSeeded(opts.seed)))
	}
	ctrl := s.controller(flowOpts...)

	cfg := roster.GeneratorConfig{PlayersPerTeam: opts.perTeam, NumberOfTeams: opts.teams}
	if err := ctrl.Configure(cfg); err != nil {
		return errors.New(ctrl.Err())
	}
	if err := ctrl.StartNaming(); err != nil {
		return errors.New(ctrl.Err())
	}
	if err := ctrl.Import(text); err != nil {
		return errors.New(ctrl.Err())
	}
	if parsed := len(roster.ParseNames(text)); parsed > cfg.TotalRequired() {
		s.logger.Warn("extra names ignored",
			zap.Int("parsed", parsed),
			zap.Int("slots", cfg.TotalRequired()),
		)
	}
	req, err := ctrl.Generate()
	if err != nil {
		return errors.New(ctrl.Err())
	}
	ctrl.Resolve(ctx, namer, req)
	teams := ctrl.Teams()

	if err := writeExports(ctx, s.exporter, teams, opts, kinds, out); err != nil {
		return err
	}
	if opts.format == formatYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(teams); err != nil {
			return fmt.Errorf("encode teams: %w", err)
		}
		return enc.Close()
	}
	_, err = fmt.Fprintln(out, renderTeams(teams))
	return err
}

func readNames(opts shuffleOptions, stdin io.Reader) (string, error) {
	switch {
	case opts.names != "":
		return opts.names, nil
	case opts.namesFile != "" && opts.namesFile != "-":
		data, err := os.ReadFile(opts.namesFile)
		if err != nil {
			return "", fmt.Errorf("read names file: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read names from stdin: %w", err)
		}
		return string(data), nil
	}
}

func parseKinds(values []string) ([]export.Kind, error) {
	var kinds []export.Kind
	for _, v := range values {
		switch kind := export.Kind(strings.ToLower(strings.TrimSpace(v))); kind {
		case export.KindPNG, export.KindPDF:
			kinds = append(kinds, kind)
		default:
			return nil, fmt.Errorf("unknown export kind %q", v)
		}
	}
	return kinds, nil
}

// writeExports renders the teams once and writes every requested artifact
// concurrently.
func writeExports(ctx context.Context, exp *export.Exporter, teams []roster.Team, opts shuffleOptions, kinds []export.Kind, out io.Writer) error {
	if opts.pngPath == "" && opts.pdfPath == "" && len(kinds) == 0 {
		return nil
	}
	img := exp.Render(teams)
	g, _ := errgroup.WithContext(ctx)
	written := make([]string, len(kinds))
	if opts.pngPath != "" {
		g.Go(func() error { return export.WriteFile(opts.pngPath, export.KindPNG, img) })
	}
	if opts.pdfPath != "" {
		g.Go(func() error { return export.WriteFile(opts.pdfPath, export.KindPDF, img) })
	}
	for i, kind := range kinds {
		g.Go(func() error {
			path, err := exp.ExportImage(kind, img)
			written[i] = path
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, path := range append([]string{opts.pngPath, opts.pdfPath}, written...) {
		if path != "" {
			fmt.Fprintf(out, "Saved %s\n", path)
		}
	}
	return nil
}

var (
	cliTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	cliTeamStyle   = lipgloss.NewStyle().Bold(true)
	cliSloganStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#5B8DEF"))
)

func renderTeams(teams []roster.Team) string {
	var b strings.Builder
	b.WriteString(cliTitleStyle.Render(export.DefaultTitle))
	b.WriteString("\n")
	for _, team := range teams {
		b.WriteString("\n")
		b.WriteString(cliTeamStyle.Render(team.Name))
		b.WriteString(" - ")
		b.WriteString(cliSloganStyle.Render(team.Slogan))
		b.WriteString("\n")
		for i, p := range team.Players {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, p.Name)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
