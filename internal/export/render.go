package export

import (
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/kingrea/teamshuffle/internal/roster"
)

const (
	glyphWidth  = 7
	lineHeight  = 15
	cardPadding = 10
	cardGap     = 12
	margin      = 16
	maxColumns  = 3
	maxLineLen  = 36
	minCardText = 20
)

var (
	backgroundColor = color.RGBA{R: 0x1E, G: 0x1E, B: 0x2E, A: 0xFF}
	cardColor       = color.RGBA{R: 0x2A, G: 0x2A, B: 0x3C, A: 0xFF}
	stripeColor     = color.RGBA{R: 0xFF, G: 0x6B, B: 0x6B, A: 0xFF}
	titleColor      = color.RGBA{R: 0xFF, G: 0x6B, B: 0x6B, A: 0xFF}
	nameColor       = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	sloganColor     = color.RGBA{R: 0x5B, G: 0x8D, B: 0xEF, A: 0xFF}
	playerColor     = color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}
)

type textLine struct {
	text string
	col  color.Color
}

// Render draws the teams as a grid of cards and returns the raster, upscaled
// by scale (values below 1 are treated as 1).
func Render(title string, teams []roster.Team, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	cards := make([][]textLine, len(teams))
	longest := minCardText
	for i, team := range teams {
		lines := []textLine{
			{text: clip(team.Name), col: nameColor},
			{text: clip(team.Slogan), col: sloganColor},
			{text: "", col: playerColor},
		}
		for n, p := range team.Players {
			lines = append(lines, textLine{text: clip(strconv.Itoa(n+1) + ". " + p.Name), col: playerColor})
		}
		for _, l := range lines {
			longest = max(longest, len(l.text))
		}
		cards[i] = lines
	}

	columns := min(maxColumns, max(1, len(teams)))
	cardWidth := longest*glyphWidth + 2*cardPadding
	rows := (len(teams) + columns - 1) / columns
	rowHeights := make([]int, rows)
	for i, lines := range cards {
		h := len(lines)*lineHeight + 2*cardPadding + 4
		rowHeights[i/columns] = max(rowHeights[i/columns], h)
	}

	titleHeight := 2 * lineHeight
	width := 2*margin + columns*cardWidth + (columns-1)*cardGap
	width = max(width, 2*margin+len(title)*glyphWidth)
	height := 2*margin + titleHeight
	for _, h := range rowHeights {
		height += h + cardGap
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)
	drawText(img, margin, margin, clip(title), titleColor)

	y := margin + titleHeight
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			idx := row*columns + col
			if idx >= len(cards) {
				break
			}
			x := margin + col*(cardWidth+cardGap)
			card := image.Rect(x, y, x+cardWidth, y+rowHeights[row])
			draw.Draw(img, card, image.NewUniform(cardColor), image.Point{}, draw.Src)
			draw.Draw(img, image.Rect(x, y, x+cardWidth, y+4), image.NewUniform(stripeColor), image.Point{}, draw.Src)
			ty := y + 4 + cardPadding
			for _, l := range cards[idx] {
				drawText(img, x+cardPadding, ty, l.text, l.col)
				ty += lineHeight
			}
		}
		y += rowHeights[row] + cardGap
	}

	if scale == 1 {
		return img
	}
	scaled := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
	return scaled
}

func drawText(dst draw.Image, x, y int, text string, col color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}

// clip keeps text within the Latin-1 range the bitmap face covers and caps its
// length so a single long name cannot stretch every card.
func clip(text string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.TrimSpace(text) {
		if n == maxLineLen {
			break
		}
		if r < 0x20 || r > 0xFF {
			r = '?'
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
