package export

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/teamshuffle/internal/roster"
)

func sampleTeams() []roster.Team {
	return []roster.Team{
		{ID: 0, Name: "Night Owls", Slogan: "Hoot hoot", Players: []roster.Player{{ID: "1", Name: "Alice"}, {ID: "2", Name: "Bob"}}},
		{ID: 1, Name: "Day Larks", Slogan: "Up early", Players: []roster.Player{{ID: "3", Name: "Carol"}, {ID: "4", Name: "Dave"}}},
		{ID: 2, Name: "Squad 3", Slogan: "Ready for action!", Players: []roster.Player{{ID: "5", Name: "Zoë"}, {ID: "6", Name: "李"}}},
		{ID: 3, Name: "Team 4", Slogan: roster.PlaceholderSlogan, Players: []roster.Player{{ID: "7", Name: "Eve"}, {ID: "8", Name: "Frank"}}},
	}
}

var fixedNow = time.Date(2026, 10, 15, 9, 4, 5, 0, time.UTC)

func TestFilenameIsTimestamped(t *testing.T) {
	assert.Equal(t, "team-shuffle-20261015-090405.png", Filename(KindPNG, fixedNow))
	assert.Equal(t, "team-shuffle-20261015-090405.pdf", Filename(KindPDF, fixedNow))
}

func TestRenderScalesAndWraps(t *testing.T) {
	one := Render(DefaultTitle, sampleTeams(), 1)
	two := Render(DefaultTitle, sampleTeams(), 2)
	require.False(t, one.Bounds().Empty())
	assert.Equal(t, one.Bounds().Dx()*2, two.Bounds().Dx())
	assert.Equal(t, one.Bounds().Dy()*2, two.Bounds().Dy())

	// Four teams at three per row need a second row.
	three := Render(DefaultTitle, sampleTeams()[:3], 1)
	assert.Greater(t, one.Bounds().Dy(), three.Bounds().Dy())
	assert.Equal(t, backgroundColor, one.RGBAAt(0, 0))
}

func TestClipReplacesUnsupportedRunes(t *testing.T) {
	assert.Equal(t, "Zoë ?", clip("  Zoë 李 "))
	long := clip("abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz")
	assert.Len(t, long, maxLineLen)
}

func TestExportWritesPNG(t *testing.T) {
	dir := t.TempDir()
	exp := New(dir, WithClock(func() time.Time { return fixedNow }), WithScale(1))
	path, err := exp.Export(KindPNG, sampleTeams())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "team-shuffle-20261015-090405.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, exp.Render(sampleTeams()).Bounds(), img.Bounds())

	leftovers, err := filepath.Glob(filepath.Join(dir, ".export-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestExportWritesPDF(t *testing.T) {
	dir := t.TempDir()
	exp := New(filepath.Join(dir, "nested"), WithClock(func() time.Time { return fixedNow }))
	path, err := exp.Export(KindPDF, sampleTeams())
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "missing PDF header")
}

func TestExportRejectsUnknownKindAndEmptyImage(t *testing.T) {
	exp := New(t.TempDir())
	_, err := exp.Export(Kind("gif"), sampleTeams())
	require.Error(t, err)
	_, err = exp.ExportImage(KindPNG, image.NewRGBA(image.Rect(0, 0, 0, 0)))
	require.Error(t, err)
}

func TestFitToPage(t *testing.T) {
	w, h := fitToPage(200, 100, 190, 277)
	assert.InDelta(t, 190, w, 1e-9)
	assert.InDelta(t, 95, h, 1e-9)

	w, h = fitToPage(100, 1000, 190, 277)
	assert.InDelta(t, 277, h, 1e-9)
	assert.InDelta(t, 27.7, w, 1e-9)

	w, h = fitToPage(0, 10, 190, 277)
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestWriteFileCreatesParentsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.png")
	img := Render(DefaultTitle, sampleTeams(), 1)
	require.NoError(t, WriteFile(path, KindPNG, img))
	require.NoError(t, WriteFile(path, KindPNG, img))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not linger")
	assert.Equal(t, "out.png", entries[0].Name())
}
