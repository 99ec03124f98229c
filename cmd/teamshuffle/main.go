// cmd/teamshuffle/main.go
//
// This is the entry point for the teamshuffle CLI.
// Running `teamshuffle` with no subcommand launches the TUI in the current
// directory; `teamshuffle shuffle` does a one-shot run for scripts.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/teamshuffle/internal/config"
	"github.com/kingrea/teamshuffle/internal/export"
	"github.com/kingrea/teamshuffle/internal/flow"
	"github.com/kingrea/teamshuffle/internal/identity"
	"github.com/kingrea/teamshuffle/internal/logging"
	"github.com/kingrea/teamshuffle/internal/roster"
	"github.com/kingrea/teamshuffle/internal/tui"
)

var (
	projectDir string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "teamshuffle",
	Short:         "Shuffle players into random, fairly sized teams",
	Long:          `Collects a roster, splits it into teams with a multi-pass Fisher-Yates shuffle and gives every team a name and slogan.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", "", "project directory holding .teamshuffle/ (defaults to cwd)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")
	rootCmd.AddCommand(shuffleCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session bundles everything a run needs once config is loaded.
type session struct {
	cfg      *config.Config
	logger   *zap.Logger
	namer    identity.Namer
	exporter *export.Exporter
}

// openSession initializes .teamshuffle in the project directory and wires
// the configured collaborators.
func openSession(ctx context.Context) (*session, error) {
	dir := projectDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		dir = cwd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	if err := config.InitDir(dir); err != nil {
		return nil, fmt.Errorf("initialize %s: %w", config.StateDir, err)
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Debug = cfg.Debug || verbose
	logger, err := logging.New(dir, cfg.Debug)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:      cfg,
		logger:   logger,
		namer:    buildNamer(ctx, cfg, cfg.IdentityProvider(), logger),
		exporter: export.New(cfg.ExportDir()),
	}, nil
}

// buildNamer picks the identity provider. Whatever is chosen is wrapped so a
// failure always ends in fallback identities.
func buildNamer(ctx context.Context, cfg *config.Config, provider string, logger *zap.Logger) identity.Namer {
	var inner identity.Namer
	switch provider {
	case config.ProviderGenAI:
		g, err := identity.NewGenAI(ctx, cfg.APIKey, cfg.Project.Identity.Model, logger)
		if err != nil {
			logger.Warn("GenAI namer unavailable, using local names", zap.Error(err))
			inner = identity.NewLocal(nil)
		} else {
			inner = g
		}
	case config.ProviderLocal:
		inner = identity.NewLocal(nil)
	}
	logger.Info("identity provider selected", zap.String("provider", provider))
	return identity.Resilient(inner, cfg.Project.Identity.Timeout, logger)
}

func (s *session) controller(opts ...flow.Option) *flow.Controller {
	defaults := roster.GeneratorConfig{
		PlayersPerTeam: s.cfg.Project.Defaults.PlayersPerTeam,
		NumberOfTeams:  s.cfg.Project.Defaults.NumberOfTeams,
	}
	base := []flow.Option{
		flow.WithPasses(s.cfg.Passes()),
		flow.WithLogger(s.logger),
		flow.WithDefaults(defaults),
	}
	return flow.New(append(base, opts...)...)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.logger.Sync() //nolint:errcheck

	app := tui.NewApp(s.controller(),
		tui.WithNamer(s.namer),
		tui.WithExporter(s.exporter),
		tui.WithLogger(s.logger),
		tui.WithContext(cmd.Context()),
	)
	// tea.WithAltScreen uses the alternate screen buffer (like vim does)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
