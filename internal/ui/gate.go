/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package ui

import (
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Region is a bit set of screen areas that need redrawing.
type Region uint8

const (
	RegionStatus Region = 1 << iota
	RegionInfo
	RegionVisualizer
	RegionList
	RegionBottom

	RegionAll = RegionStatus | RegionInfo | RegionVisualizer | RegionList | RegionBottom
)

// Context is the terminal as the renderer sees it. Only the goroutine holding the
// gate may touch it.
type Context struct {
	Out            io.Writer
	Width, Height  int
	FirstInList    int
	ShowVisualizer bool

	styles styles
	cache  map[Region]string
}

// Gate serializes all drawing. Anything that wants the screen updated marks a
// region dirty; Present redraws the dirty regions under the render lock.
type Gate struct {
	mu     sync.Mutex
	dirty  Region
	ctx    Context
	center bool
}

func NewGate(out io.Writer, width, height int) *Gate {
	r := lipgloss.NewRenderer(out)
	return &Gate{
		dirty: RegionAll,
		ctx: Context{
			Out:    out,
			Width:  width,
			Height: height,
			styles: newStyles(r),
			cache:  map[Region]string{},
		},
	}
}

func (g *Gate) Invalidate(r Region) {
	g.mu.Lock()
	g.dirty |= r
	g.mu.Unlock()
}

func (g *Gate) Resize(width, height int) {
	g.mu.Lock()
	g.ctx.Width, g.ctx.Height = width, height
	g.dirty = RegionAll
	g.mu.Unlock()
}

// ToggleVisualizer flips the visualizer strip; the list moves, so all is redrawn.
func (g *Gate) ToggleVisualizer() {
	g.mu.Lock()
	g.ctx.ShowVisualizer = !g.ctx.ShowVisualizer
	g.dirty = RegionAll
	g.mu.Unlock()
}

func (g *Gate) SetVisualizer(on bool) {
	g.mu.Lock()
	g.ctx.ShowVisualizer = on
	g.dirty = RegionAll
	g.mu.Unlock()
}

func (g *Gate) VisualizerShown() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ctx.ShowVisualizer
}

// CenterOnSelection scrolls the list so the selection sits in the middle on the
// next draw.
func (g *Gate) CenterOnSelection() {
	g.mu.Lock()
	g.center = true
	g.dirty |= RegionList
	g.mu.Unlock()
}

// Present draws f if anything is dirty and reports whether it wrote.
func (g *Gate) Present(f *Frame) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dirty == 0 {
		return false, nil
	}
	dirty := g.dirty
	g.dirty = 0

	ctx := &g.ctx
	if g.center {
		centerList(ctx, f)
		g.center = false
	}
	screen := render(ctx, f, dirty)
	_, err := io.WriteString(ctx.Out, "\x1b[H"+strings.ReplaceAll(screen, "\n", "\x1b[K\r\n")+"\x1b[K\x1b[J")
	return true, err
}
