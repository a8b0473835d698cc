/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package ui

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"kmp/internal/player"
	"kmp/internal/search"
	"kmp/internal/visualizer"
	"kmp/pkg/defaults"
)

// Controller is the part of the player the key map drives.
type Controller interface {
	Snapshot() player.Status
	Names() []string
	Subscribe(fn func(player.Event)) func()
	Visualizer() *visualizer.Publisher
	Done() <-chan struct{}

	AddVolume(delta float64)
	ToggleMute()
	SeekBy(d time.Duration) error
	SeekString(s string) error
	AddSpeed(hz int)
	RestoreSpeed()
	TogglePause()
	Next()
	Prev()
	PlaySelected()
	CycleRepeat()
	Quit()

	SelectDown()
	SelectUp()
	SelectFirst()
	SelectLast()
	SelectCurrent()
	SelectPage(n int)
	SelectIndex(i int)
	Search(query string, dir search.Direction) bool
	JumpMatch(dir search.Direction) bool
}

var _ Controller = (*player.Player)(nil)

// App is the control dispatcher: it turns keys into player operations and keeps
// the screen fresh.
type App struct {
	Ctl     Controller
	Gate    *Gate
	Keys    <-chan Key
	Resize  <-chan os.Signal
	Size    func() (int, int)
	Sampler visualizer.Sampler
	Log     *slog.Logger

	SeekStep      time.Duration
	UpdateRate    time.Duration
	PromptTimeout time.Duration

	prompt   *Prompt
	onAccept func(string)
}

func (a *App) defaults() {
	if a.Log == nil {
		a.Log = slog.Default()
	}
	if a.SeekStep <= 0 {
		a.SeekStep = defaults.SeekStep
	}
	if a.UpdateRate <= 0 {
		a.UpdateRate = defaults.UpdateRate
	}
	if a.PromptTimeout <= 0 {
		a.PromptTimeout = defaults.PromptTimeout
	}
}

// Run draws and dispatches until the user quits, the player stops or ctx ends.
func (a *App) Run(ctx context.Context) error {
	a.defaults()

	changed := make(chan struct{}, 1)
	unsubscribe := a.Ctl.Subscribe(func(player.Event) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	tick := time.NewTicker(a.UpdateRate)
	defer tick.Stop()

	for {
		a.draw()

		select {
		case <-ctx.Done():
			return nil
		case <-a.Ctl.Done():
			return nil
		case k, ok := <-a.Keys:
			if !ok {
				a.Ctl.Quit()
				return nil
			}
			if !a.handleKey(k, time.Now()) {
				return nil
			}
		case <-a.Resize:
			a.redraw()
		case <-changed:
			a.Gate.Invalidate(RegionAll)
		case now := <-tick.C:
			a.onTick(now)
		}
	}
}

func (a *App) onTick(now time.Time) {
	if a.prompt != nil && a.prompt.Expired(now) {
		a.closePrompt()
	}
	dirty := RegionStatus
	if a.Gate.VisualizerShown() && a.Ctl.Snapshot().State == player.StatePlaying {
		dirty |= RegionVisualizer
	}
	a.Gate.Invalidate(dirty)
}

func (a *App) redraw() {
	if a.Size != nil {
		a.Gate.Resize(a.Size())
		return
	}
	a.Gate.Invalidate(RegionAll)
}

func (a *App) draw() {
	f := &Frame{
		Status:  a.Ctl.Snapshot(),
		Names:   a.Ctl.Names(),
		Chunk:   a.Ctl.Visualizer().Latest(),
		Sampler: a.Sampler,
	}
	if a.prompt != nil {
		f.Prompting, f.Prompt = true, a.prompt.Line()
	}
	if _, err := a.Gate.Present(f); err != nil {
		a.Log.Warn("draw failed", "error", err)
	}
}

func (a *App) openPrompt(label string, maxLen int, now time.Time, accept func(string)) {
	a.prompt = NewPrompt(label, maxLen, a.PromptTimeout, now)
	a.onAccept = accept
	a.Gate.Invalidate(RegionBottom)
}

func (a *App) closePrompt() {
	a.prompt, a.onAccept = nil, nil
	a.Gate.Invalidate(RegionBottom)
}

// handleKey returns false once the user asked to quit.
func (a *App) handleKey(k Key, now time.Time) bool {
	if a.prompt != nil {
		switch a.prompt.Feed(k, now) {
		case PromptAccepted:
			value, accept := a.prompt.Value(), a.onAccept
			a.closePrompt()
			if value != "" {
				accept(value)
			}
		case PromptCancelled:
			a.closePrompt()
		default:
			a.Gate.Invalidate(RegionBottom)
		}
		return true
	}

	c := a.Ctl
	switch k.Code {
	case KeyRight:
		a.seek(a.SeekStep)
	case KeyLeft:
		a.seek(-a.SeekStep)
	case KeyDown:
		c.SelectDown()
	case KeyUp:
		c.SelectUp()
	case KeyPgDn:
		c.SelectPage(defaults.PageStep)
	case KeyPgUp:
		c.SelectPage(-defaults.PageStep)
	case KeyEnter:
		c.PlaySelected()
	case KeyCtrl:
		switch k.Rune {
		case 'd', 'f':
			c.SelectPage(defaults.PageStep)
		case 'b', 'u':
			c.SelectPage(-defaults.PageStep)
		case 'l':
			a.redraw()
		case 'c':
			c.Quit()
			return false
		}
	case KeyRune:
		return a.handleRune(k.Rune, now)
	}
	a.Gate.Invalidate(RegionList | RegionBottom | RegionStatus)
	return true
}

func (a *App) handleRune(r rune, now time.Time) bool {
	c := a.Ctl
	switch r {
	case 'q':
		c.Quit()
		return false
	case '0':
		c.AddVolume(defaults.VolumeStepBig)
	case ')':
		c.AddVolume(defaults.VolumeStepFine)
	case '9':
		c.AddVolume(-defaults.VolumeStepBig)
	case '(':
		c.AddVolume(-defaults.VolumeStepFine)
	case 'l':
		a.seek(a.SeekStep)
	case 'h':
		a.seek(-a.SeekStep)
	case 'o':
		c.Next()
	case 'i':
		c.Prev()
	case 'j':
		c.SelectDown()
	case 'k':
		c.SelectUp()
	case 'g':
		c.SelectFirst()
	case 'G':
		c.SelectLast()
	case '/', '.':
		a.openSearch("/", search.Forward, now)
	case '?', ',':
		a.openSearch("?", search.Backward, now)
	case 'n':
		if c.JumpMatch(search.Forward) {
			a.Gate.CenterOnSelection()
		}
	case 'N':
		if c.JumpMatch(search.Backward) {
			a.Gate.CenterOnSelection()
		}
	case 'r':
		c.CycleRepeat()
	case ' ':
		c.TogglePause()
	case 'z', 'Z':
		c.SelectCurrent()
		a.Gate.CenterOnSelection()
	case 't':
		a.openPrompt("time: ", defaults.JumpMaxLen, now, func(s string) {
			if err := c.SeekString(s); err != nil {
				a.Log.Debug("seek ignored", "input", s, "error", err)
			}
		})
	case ':':
		a.openPrompt("select: ", defaults.JumpMaxLen, now, a.jumpTo)
	case 'm':
		c.ToggleMute()
	case '[':
		c.AddSpeed(-defaults.SpeedCoarse)
	case ']':
		c.AddSpeed(defaults.SpeedCoarse)
	case '{':
		c.AddSpeed(-defaults.SpeedFine)
	case '}':
		c.AddSpeed(defaults.SpeedFine)
	case '\\':
		c.RestoreSpeed()
	case 'v', 'V':
		a.Gate.ToggleVisualizer()
	default:
		return true
	}
	a.Gate.Invalidate(RegionList | RegionBottom | RegionStatus)
	return true
}

func (a *App) seek(d time.Duration) {
	if err := a.Ctl.SeekBy(d); err != nil {
		a.Log.Debug("seek ignored", "error", err)
	}
}

func (a *App) openSearch(label string, dir search.Direction, now time.Time) {
	a.openPrompt(label, defaults.SearchMaxLen, now, func(q string) {
		if a.Ctl.Search(q, dir) {
			a.Gate.CenterOnSelection()
		}
	})
}

// jumpTo selects a 1-based list position, clamped to the list.
func (a *App) jumpTo(s string) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return
	}
	count := len(a.Ctl.Names())
	if count == 0 {
		return
	}
	a.Ctl.SelectIndex(max(1, min(n, count)) - 1)
}
