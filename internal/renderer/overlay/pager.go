// Package overlay draws the paged overlay: a box showing one page at a time,
// a dots indicator under it and an optional status line.
package overlay

import (
	"fmt"
	"math"

	"github.com/dshills/swipepane/internal/renderer/backend"
)

// UnselectedDotOpacity is how strongly unselected dots show over the
// background.
const UnselectedDotOpacity = 0.35

const (
	dotRune     = '●'
	dividerRune = '│'
)

// Theme holds the overlay colors.
type Theme struct {
	Foreground backend.Color
	Background backend.Color
	Accent     backend.Color
}

// ThemeFromHex parses "#rrggbb" colors into a theme.
func ThemeFromHex(fg, bg, accent string) (Theme, error) {
	var (
		t   Theme
		err error
	)
	if t.Foreground, err = backend.ColorFromHex(fg); err != nil {
		return Theme{}, fmt.Errorf("foreground: %w", err)
	}
	if t.Background, err = backend.ColorFromHex(bg); err != nil {
		return Theme{}, fmt.Errorf("background: %w", err)
	}
	if t.Accent, err = backend.ColorFromHex(accent); err != nil {
		return Theme{}, fmt.Errorf("accent: %w", err)
	}
	return t, nil
}

// Geometry is where the overlay sits on screen.
type Geometry struct {
	// Box is the visible page area. Its width is the page width in cells.
	Box backend.Rect

	// DotsRow and StatusRow are screen rows below the box. A row outside
	// the screen is not drawn.
	DotsRow   int
	StatusRow int
}

// PageWidth returns the page width in cells.
func (g Geometry) PageWidth() int {
	return g.Box.Width()
}

// Layout centers a pageWidth × pageHeight box on a screen, leaving two rows
// under it for the dots and the status line. The box shrinks to fit small
// screens but never below one cell.
func Layout(screenW, screenH, pageWidth, pageHeight int) Geometry {
	w := max(min(pageWidth, screenW), 1)
	h := max(min(pageHeight, screenH-2), 1)

	left := max((screenW-w)/2, 0)
	top := max((screenH-h-2)/2, 0)

	return Geometry{
		Box:       backend.RectFromSize(left, top, w, h),
		DotsRow:   top + h,
		StatusRow: top + h + 1,
	}
}

// Frame is what to draw.
type Frame struct {
	// Titles has one entry per page.
	Titles []string

	// Index is the committed page, highlighted in the dots.
	Index int

	// Position is the horizontal position of the page strip in cells: zero
	// shows the first page, -k·PageWidth shows page k.
	Position float64

	// Status is drawn under the dots when not empty.
	Status string
}

// Pager draws frames.
type Pager struct {
	theme Theme
	geom  Geometry
}

// NewPager creates a pager drawer.
func NewPager(theme Theme, geom Geometry) *Pager {
	return &Pager{theme: theme, geom: geom}
}

// SetTheme replaces the colors.
func (p *Pager) SetTheme(t Theme) {
	p.theme = t
}

// Theme returns the colors.
func (p *Pager) Theme() Theme {
	return p.theme
}

// SetGeometry moves the overlay.
func (p *Pager) SetGeometry(g Geometry) {
	p.geom = g
}

// Geometry returns where the overlay sits.
func (p *Pager) Geometry() Geometry {
	return p.geom
}

// Draw clears b and draws f. The caller shows the frame.
func (p *Pager) Draw(b backend.Backend, f Frame) {
	screenW, screenH := b.Size()
	screen := backend.RectFromSize(0, 0, screenW, screenH)
	base := backend.DefaultStyle().
		WithForeground(p.theme.Foreground).
		WithBackground(p.theme.Background)

	b.Clear()
	box := p.geom.Box
	b.Fill(box, backend.NewStyledCell(' ', base))

	p.drawPages(b, f, base)
	p.drawDots(b, f, screen)

	if f.Status != "" && p.geom.StatusRow < screenH {
		style := backend.DefaultStyle().
			WithForeground(p.theme.Background.Blend(p.theme.Foreground, 0.6)).
			With(backend.AttrDim)
		x := centered(screen.Left, screenW, backend.StringWidth(f.Status))
		backend.DrawString(b, x, p.geom.StatusRow, f.Status, style, screen)
	}
}

func (p *Pager) drawPages(b backend.Backend, f Frame, base backend.Style) {
	box := p.geom.Box
	width := box.Width()
	if width == 0 || box.Height() == 0 {
		return
	}

	origin := box.Left + int(math.Round(f.Position))
	titleRow := box.Top + box.Height()/2
	divider := base.WithForeground(p.theme.Background.Blend(p.theme.Foreground, UnselectedDotOpacity))
	title := base.With(backend.AttrBold)

	for i, t := range f.Titles {
		left := origin + i*width
		if left >= box.Right || left+width <= box.Left {
			continue
		}

		if left > box.Left {
			for y := box.Top; y < box.Bottom; y++ {
				b.SetCell(left, y, backend.NewStyledCell(dividerRune, divider))
			}
		}

		x := centered(left, width, backend.StringWidth(t))
		backend.DrawString(b, x, titleRow, t, title, box)
	}
}

func (p *Pager) drawDots(b backend.Backend, f Frame, screen backend.Rect) {
	n := len(f.Titles)
	if n == 0 || !screen.Contains(screen.Left, p.geom.DotsRow) {
		return
	}

	dim := backend.DefaultStyle().
		WithForeground(p.theme.Background.Blend(p.theme.Foreground, UnselectedDotOpacity))
	selected := backend.DefaultStyle().WithForeground(p.theme.Accent)

	// Dots are two cells apart.
	x := centered(screen.Left, screen.Width(), 2*n-1)
	for i := 0; i < n; i++ {
		style := dim
		if i == f.Index {
			style = selected
		}
		if screen.Contains(x, p.geom.DotsRow) {
			b.SetCell(x, p.geom.DotsRow, backend.NewStyledCell(dotRune, style))
		}
		x += 2
	}
}

// centered returns the left edge of a run of w cells centered in a span of
// the given width starting at left.
func centered(left, span, w int) int {
	return left + (span-w)/2
}
