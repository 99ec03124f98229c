package main

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/teamshuffle/internal/config"
	"github.com/kingrea/teamshuffle/internal/export"
	"github.com/kingrea/teamshuffle/internal/identity"
	"github.com/kingrea/teamshuffle/internal/roster"
)

func testSession(t *testing.T) *session {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, config.InitDir(dir))
	cfg, err := config.NewConfig(dir)
	require.NoError(t, err)
	return &session{
		cfg:      cfg,
		logger:   zap.NewNop(),
		namer:    identity.Resilient(nil, 0, nil),
		exporter: export.New(cfg.ExportDir()),
	}
}

func baseOptions() shuffleOptions {
	return shuffleOptions{perTeam: 2, teams: 3, format: formatText, seed: 42, seeded: true}
}

func TestRunShuffleFromNamesFlag(t *testing.T) {
	s := testSession(t)
	opts := baseOptions()
	opts.names = "Ann, Bo; Cy\nDi, Ed, Flo"
	var out bytes.Buffer
	require.NoError(t, runShuffle(context.Background(), s, opts, strings.NewReader(""), &out))

	text := out.String()
	for _, name := range []string{"Ann", "Bo", "Cy", "Di", "Ed", "Flo", "Squad 1", "Squad 3", identity.FallbackSlogan} {
		assert.Contains(t, text, name)
	}
}

func TestRunShuffleIsReproducibleWithSeed(t *testing.T) {
	s := testSession(t)
	opts := baseOptions()
	opts.names = "Ann, Bo, Cy, Di, Ed, Flo"
	opts.format = formatYAML

	var first, second bytes.Buffer
	require.NoError(t, runShuffle(context.Background(), s, opts, nil, &first))
	require.NoError(t, runShuffle(context.Background(), s, opts, nil, &second))

	var teams, again []roster.Team
	require.NoError(t, yaml.Unmarshal(first.Bytes(), &teams))
	require.NoError(t, yaml.Unmarshal(second.Bytes(), &again))
	require.Len(t, teams, 3)
	for i := range teams {
		assert.Equal(t, teams[i].MemberNames(), again[i].MemberNames(), "player IDs differ per run, names must not")
	}
	seen := map[string]bool{}
	for _, team := range teams {
		assert.Len(t, team.Players, 2)
		for _, p := range team.Players {
			seen[p.Name] = true
		}
	}
	assert.Len(t, seen, 6)
}

func TestRunShuffleReadsStdin(t *testing.T) {
	s := testSession(t)
	opts := baseOptions()
	opts.perTeam, opts.teams = 1, 2
	var out bytes.Buffer
	require.NoError(t, runShuffle(context.Background(), s, opts, strings.NewReader("Ann\nBo\n"), &out))
	assert.Contains(t, out.String(), "Ann")
	assert.Contains(t, out.String(), "Bo")
}

func TestRunShuffleRejectsMissingNames(t *testing.T) {
	s := testSession(t)
	opts := baseOptions()
	opts.names = "Ann, Bo"
	err := runShuffle(context.Background(), s, opts, nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4 missing")
}

func TestRunShuffleRejectsBadConfig(t *testing.T) {
	s := testSession(t)
	opts := baseOptions()
	opts.teams = 1
	opts.names = "Ann, Bo"
	require.Error(t, runShuffle(context.Background(), s, opts, nil, &bytes.Buffer{}))

	opts = baseOptions()
	opts.perTeam, opts.teams = 4, math.MaxInt/4+3
	opts.names = "Ann, Bo, Cy, Di, Ed, Flo, Gus, Hal"
	require.Error(t, runShuffle(context.Background(), s, opts, nil, &bytes.Buffer{}))

	opts = baseOptions()
	opts.format = "xml"
	require.Error(t, runShuffle(context.Background(), s, opts, nil, &bytes.Buffer{}))

	opts = baseOptions()
	opts.provider = "oracle"
	opts.names = "Ann, Bo, Cy, Di, Ed, Flo"
	require.Error(t, runShuffle(context.Background(), s, opts, nil, &bytes.Buffer{}))
}

func TestRunShuffleLocalProvider(t *testing.T) {
	s := testSession(t)
	opts := baseOptions()
	opts.provider = config.ProviderLocal
	opts.names = "Ann, Bo, Cy, Di, Ed, Flo"
	opts.format = formatYAML
	var out bytes.Buffer
	require.NoError(t, runShuffle(context.Background(), s, opts, nil, &out))

	var teams []roster.Team
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &teams))
	for i, team := range teams {
		assert.NotEqual(t, identity.FallbackName(i), team.Name)
		assert.NotEmpty(t, team.Slogan)
	}
}

func TestRunShuffleWritesExports(t *testing.T) {
	s := testSession(t)
	dir := t.TempDir()
	opts := baseOptions()
	opts.names = "Ann, Bo, Cy, Di, Ed, Flo"
	opts.pngPath = filepath.Join(dir, "teams.png")
	opts.pdfPath = filepath.Join(dir, "teams.pdf")
	opts.exports = []string{"PNG"}
	var out bytes.Buffer
	require.NoError(t, runShuffle(context.Background(), s, opts, nil, &out))

	for _, path := range []string{opts.pngPath, opts.pdfPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
		assert.Contains(t, out.String(), "Saved "+path)
	}
	matches, err := filepath.Glob(filepath.Join(s.exporter.Dir(), "team-shuffle-*.png"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestParseKinds(t *testing.T) {
	kinds, err := parseKinds([]string{"png", " PDF "})
	require.NoError(t, err)
	assert.Equal(t, []export.Kind{export.KindPNG, export.KindPDF}, kinds)

	_, err = parseKinds([]string{"gif"})
	assert.Error(t, err)
}
