// internal/export/export.go
//
// Turns the results screen into downloadable artifacts: a PNG raster of the
// team cards, and a single-page PDF that wraps that raster. Files land in the
// configured export directory with a timestamp-suffixed name, written through
// a temp file so a failed export never leaves a partial artifact behind.

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/kingrea/teamshuffle/internal/roster"
)

// Kind selects an artifact format.
type Kind string

const (
	KindPNG Kind = "png"
	KindPDF Kind = "pdf"
)

const (
	// DefaultTitle heads every rendered results sheet.
	DefaultTitle = "Team Shuffle Results"
	// DefaultScale upscales the bitmap font so text stays legible.
	DefaultScale = 2

	filePrefix     = "team-shuffle"
	pageMarginMM   = 10.0
	pdfImageHandle = "results"
)

// Filename returns the artifact name for kind at t.
func Filename(kind Kind, t time.Time) string {
	return fmt.Sprintf("%s-%s.%s", filePrefix, t.Format("20060102-150405"), kind)
}

// Exporter writes artifacts into a directory.
type Exporter struct {
	dir   string
	title string
	scale int
	now   func() time.Time
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithClock overrides the timestamp source for filenames.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithTitle overrides the results sheet heading.
func WithTitle(title string) Option {
	return func(e *Exporter) {
		if title != "" {
			e.title = title
		}
	}
}

// WithScale overrides the raster upscale factor.
func WithScale(scale int) Option {
	return func(e *Exporter) {
		if scale > 0 {
			e.scale = scale
		}
	}
}

// New creates an exporter writing into dir.
func New(dir string, opts ...Option) *Exporter {
	e := &Exporter{
		dir:   dir,
		title: DefaultTitle,
		scale: DefaultScale,
		now:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Dir returns the export directory.
func (e *Exporter) Dir() string { return e.dir }

// Render draws teams with the exporter's title and scale.
func (e *Exporter) Render(teams []roster.Team) *image.RGBA {
	return Render(e.title, teams, e.scale)
}

// Export renders teams and writes one artifact of the given kind, returning
// its path.
func (e *Exporter) Export(kind Kind, teams []roster.Team) (string, error) {
	return e.ExportImage(kind, e.Render(teams))
}

// ExportImage writes an already rendered raster as kind into the export
// directory under a timestamped name.
func (e *Exporter) ExportImage(kind Kind, img image.Image) (string, error) {
	path := filepath.Join(e.dir, Filename(kind, e.now()))
	if err := WriteFile(path, kind, img); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFile writes img as kind to path, replacing any existing file only once
// the new content is complete.
func WriteFile(path string, kind Kind, img image.Image) error {
	var write func(io.Writer, image.Image) error
	switch kind {
	case KindPNG:
		write = WritePNG
	case KindPDF:
		write = WritePDF
	default:
		return fmt.Errorf("export: unsupported kind %q", kind)
	}
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("export: nothing to export")
	}
	return writeAtomic(path, func(w io.Writer) error { return write(w, img) })
}

func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: ensure dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return fmt.Errorf("export: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("export: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("export: finalize %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("export: encode png: %w", err)
	}
	return nil
}

// WritePDF wraps img in a single A4 page, scaled to the printable width with
// its aspect ratio preserved.
func WritePDF(w io.Writer, img image.Image) error {
	var raster bytes.Buffer
	if err := png.Encode(&raster, img); err != nil {
		return fmt.Errorf("export: encode pdf raster: %w", err)
	}
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(pdfImageHandle, opts, &raster)
	pageW, pageH := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	bounds := img.Bounds()
	imgW, imgH := fitToPage(float64(bounds.Dx()), float64(bounds.Dy()), pageW-left-right, pageH-top-bottom)
	pdf.ImageOptions(pdfImageHandle, left, top, imgW, imgH, false, opts, 0, "")
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	return nil
}

// fitToPage scales a srcW x srcH box to availW, shrinking further when the
// result would be taller than availH.
func fitToPage(srcW, srcH, availW, availH float64) (float64, float64) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	w := availW
	h := availW * srcH / srcW
	if h > availH {
		w = w * availH / h
		h = availH
	}
	return w, h
}
