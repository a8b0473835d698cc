/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"kmp/internal/catalog"
	"kmp/internal/player"
	"kmp/internal/visualizer"
	"kmp/pkg/defaults"
)

// Frame is everything one draw needs, collected before the render lock is taken.
type Frame struct {
	Status    player.Status
	Names     []string
	Chunk     *visualizer.Chunk
	Sampler   visualizer.Sampler
	Prompting bool
	Prompt    string
}

type styles struct {
	plain    lipgloss.Style
	box      lipgloss.Style
	title    lipgloss.Style
	current  lipgloss.Style
	selected lipgloss.Style
	dim      lipgloss.Style
	levels   [3]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		plain:    r.NewStyle(),
		box:      r.NewStyle().Border(lipgloss.ThickBorder()),
		title:    r.NewStyle().Bold(true),
		current:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		selected: r.NewStyle().Reverse(true),
		dim:      r.NewStyle().Faint(true),
		levels: [3]lipgloss.Style{
			r.NewStyle().Foreground(lipgloss.Color("2")),
			r.NewStyle().Foreground(lipgloss.Color("3")),
			r.NewStyle().Foreground(lipgloss.Color("1")),
		},
	}
}

type layout struct {
	statusW, infoW int
	topH           int
	visH           int
	listH          int
}

func layoutOf(ctx *Context) layout {
	l := layout{topH: defaults.ListYPos}
	l.statusW = ctx.Width * 4 / 10
	l.infoW = ctx.Width - l.statusW
	if ctx.ShowVisualizer {
		l.visH = defaults.VisualizerHeight
	}
	l.listH = ctx.Height - l.topH - l.visH - 1
	if l.listH < 1 {
		l.listH += l.visH
		l.visH = 0
	}
	return l
}

func tooSmall(ctx *Context) bool {
	return ctx.Width < defaults.MinTermWidth || ctx.Height < defaults.MinTermHeight
}

// render rebuilds the dirty regions and returns the whole screen.
func render(ctx *Context, f *Frame, dirty Region) string {
	if tooSmall(ctx) {
		clear(ctx.cache)
		return truncate("terminal too small", ctx.Width)
	}
	l := layoutOf(ctx)
	redo := func(r Region) bool {
		_, ok := ctx.cache[r]
		return dirty&r != 0 || !ok
	}

	if redo(RegionStatus) {
		ctx.cache[RegionStatus] = box(ctx, l.statusW, l.topH, statusLines(ctx, f.Status, l.statusW-2))
	}
	if redo(RegionInfo) {
		ctx.cache[RegionInfo] = box(ctx, l.infoW, l.topH, infoLines(ctx, f.Status, l.infoW-2))
	}
	if redo(RegionVisualizer) {
		ctx.cache[RegionVisualizer] = visualizerBlock(ctx, f, l.visH)
	}
	if redo(RegionList) {
		ctx.cache[RegionList] = listBlock(ctx, f, l.listH)
	}
	if redo(RegionBottom) {
		ctx.cache[RegionBottom] = bottomLine(ctx, f)
	}

	parts := []string{lipgloss.JoinHorizontal(lipgloss.Top, ctx.cache[RegionStatus], ctx.cache[RegionInfo])}
	if l.visH > 0 {
		parts = append(parts, ctx.cache[RegionVisualizer])
	}
	parts = append(parts, ctx.cache[RegionList], ctx.cache[RegionBottom])
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func box(ctx *Context, width, height int, lines []string) string {
	inner := height - 2
	for len(lines) < inner {
		lines = append(lines, "")
	}
	return ctx.styles.box.Width(width - 2).Height(inner).Render(strings.Join(lines[:inner], "\n"))
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

func formatTime(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func statusLines(ctx *Context, s player.Status, width int) []string {
	st := ctx.styles

	clock := formatTime(s.Position) + " / " + formatTime(s.Duration)
	switch s.State {
	case player.StatePaused:
		clock = "(paused) " + clock
	case player.StateStopped:
		clock = "(stopped) " + clock
	}
	if s.OriginalRate > 0 && s.SampleRate != s.OriginalRate {
		clock += fmt.Sprintf(" (%d%%)", int(math.Round(s.Speed*100)))
	}

	label := fmt.Sprintf("volume: %3d%% ", int(math.Round(s.Volume*100)))
	if s.Muted {
		label = "volume: muted "
	}
	vol := label + volumeBar(ctx, s, width-runewidth.StringWidth(label))

	total := fmt.Sprintf("total: %d / %d", s.Index+1, s.Count)
	repeat := ""
	if s.Repeat != catalog.RepeatNone {
		repeat = st.dim.Render("(repeat " + s.Repeat.String() + ")")
	}
	return []string{truncate(clock, width), vol, truncate(total, width), repeat}
}

// volumeBar fills in proportion to the volume range; cells turn yellow past half and
// red past 80% of the maximum.
func volumeBar(ctx *Context, s player.Status, width int) string {
	if width <= 0 {
		return ""
	}
	maxVol := s.MaxVolume
	if maxVol <= 0 {
		maxVol = defaults.MaxVolume
	}
	filled := int(math.Round(s.Volume / maxVol * float64(width)))

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i >= filled {
			b.WriteString(" ")
			continue
		}
		cell := "█"
		if s.Muted {
			b.WriteString(ctx.styles.dim.Render(cell))
			continue
		}
		frac := float64(i+1) / float64(width)
		level := 0
		switch {
		case frac > 0.8:
			level = 2
		case frac > 0.5:
			level = 1
		}
		b.WriteString(ctx.styles.levels[level].Render(cell))
	}
	return b.String()
}

func infoLines(ctx *Context, s player.Status, width int) []string {
	t := s.Track
	title := t.Title
	if title == "" {
		title = t.Name()
	}
	if t.Path == "" {
		title = ""
	}
	return []string{
		ctx.styles.title.Render(truncate(title, width)),
		truncate(t.Album, width),
		truncate(t.Artist, width),
	}
}

func visualizerBlock(ctx *Context, f *Frame, height int) string {
	if height <= 0 {
		return ""
	}
	bars := f.Sampler.Bars(f.Chunk, ctx.Width, height)
	rows := make([]string, height)
	for r := range rows {
		level := min(2, (height-1-r)*3/height)
		style := ctx.styles.levels[level]
		var b strings.Builder
		for _, h := range bars {
			if h >= height-r {
				b.WriteString(style.Render("█"))
			} else {
				b.WriteString(" ")
			}
		}
		rows[r] = b.String()
	}
	return strings.Join(rows, "\n")
}

// scrollList keeps the selection inside the visible rows.
func scrollList(ctx *Context, selected, rows, count int) {
	if selected < ctx.FirstInList {
		ctx.FirstInList = selected
	}
	if selected >= ctx.FirstInList+rows {
		ctx.FirstInList = selected - rows + 1
	}
	ctx.FirstInList = max(0, min(ctx.FirstInList, count-rows))
}

func centerList(ctx *Context, f *Frame) {
	rows := layoutOf(ctx).listH
	ctx.FirstInList = max(0, min(f.Status.Selected-rows/2, len(f.Names)-rows))
}

func listBlock(ctx *Context, f *Frame, rows int) string {
	scrollList(ctx, f.Status.Selected, rows, len(f.Names))
	lines := make([]string, rows)
	for r := range lines {
		i := ctx.FirstInList + r
		if i >= len(f.Names) {
			continue
		}
		name := truncate(f.Names[i], ctx.Width)
		name += strings.Repeat(" ", max(0, ctx.Width-runewidth.StringWidth(name)))
		style := ctx.styles.plain
		if i == f.Status.Index {
			style = ctx.styles.current
		}
		if i == f.Status.Selected {
			style = style.Inherit(ctx.styles.selected)
		}
		lines[r] = style.Render(name)
	}
	return strings.Join(lines, "\n")
}

func bottomLine(ctx *Context, f *Frame) string {
	s := f.Status
	left := ""
	switch {
	case f.Prompting:
		left = f.Prompt
	case s.Query != "":
		left = fmt.Sprintf("'%s' [%d/%d]", s.Query, s.MatchPos, s.MatchCount)
	}
	right := fmt.Sprintf("%d", s.Selected+1)

	room := ctx.Width - runewidth.StringWidth(right) - 1
	left = truncate(left, room)
	gap := max(1, ctx.Width-runewidth.StringWidth(left)-runewidth.StringWidth(right))
	return left + strings.Repeat(" ", gap) + right
}
