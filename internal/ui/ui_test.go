/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package ui

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"kmp/internal/catalog"
	"kmp/internal/player"
	"kmp/internal/search"
	"kmp/internal/visualizer"
	"kmp/pkg/audioengine"
)

func TestDecodeKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Key
	}{
		{"runes", "jk", []Key{Rune('j'), Rune('k')}},
		{"utf8", "é", []Key{Rune('é')}},
		{"enter", "\r", []Key{{Code: KeyEnter}}},
		{"backspace", "\x7f", []Key{{Code: KeyBackspace}}},
		{"ctrl", "\x04\x17", []Key{Ctrl('d'), Ctrl('w')}},
		{"lone escape", "\x1b", []Key{{Code: KeyEsc}}},
		{"arrows", "\x1b[A\x1b[B\x1b[C\x1b[D", []Key{{Code: KeyUp}, {Code: KeyDown}, {Code: KeyRight}, {Code: KeyLeft}}},
		{"ss3 arrows", "\x1bOA", []Key{{Code: KeyUp}}},
		{"pages", "\x1b[5~\x1b[6~", []Key{{Code: KeyPgUp}, {Code: KeyPgDn}}},
		{"unknown csi dropped", "\x1b[15~q", []Key{Rune('q')}},
		{"escape then rune", "\x1bx", []Key{{Code: KeyEsc}, Rune('x')}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeKeys([]byte(tt.in))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("DecodeKeys(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPromptEditing(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewPrompt("/", 4, time.Second, now)

	for _, r := range "abcdef" {
		p.Feed(Rune(r), now)
	}
	if got := p.Value(); got != "abcd" {
		t.Fatalf("value = %q, want bounded to %q", got, "abcd")
	}
	p.Feed(Key{Code: KeyBackspace}, now)
	p.Feed(Key{Code: KeyTab}, now)
	if got := p.Line(); got != "/abc" {
		t.Fatalf("line = %q", got)
	}
	p.Feed(Ctrl('w'), now)
	if p.Value() != "" {
		t.Fatalf("C-w should clear, got %q", p.Value())
	}
	p.Feed(Rune('z'), now)
	if res := p.Feed(Key{Code: KeyEnter}, now); res != PromptAccepted || p.Value() != "z" {
		t.Fatalf("enter = %v %q", res, p.Value())
	}
	if res := p.Feed(Key{Code: KeyEsc}, now); res != PromptCancelled || p.Value() != "" {
		t.Fatalf("esc = %v %q", res, p.Value())
	}
}

func TestPromptTimeoutResetsPerKey(t *testing.T) {
	start := time.Unix(100, 0)
	p := NewPrompt(":", 10, 5*time.Second, start)

	p.Feed(Rune('1'), start.Add(4*time.Second))
	if p.Expired(start.Add(8 * time.Second)) {
		t.Fatal("key press should push the deadline back")
	}
	if !p.Expired(start.Add(10 * time.Second)) {
		t.Fatal("idle prompt should expire")
	}
}

func sampleFrame() *Frame {
	return &Frame{
		Status: player.Status{
			State:        player.StatePaused,
			Index:        1,
			Count:        3,
			Selected:     2,
			Track:        audioengine.Track{Path: "/music/b.wav", Title: "Song B", Album: "Album", Artist: "Artist"},
			Position:     65 * time.Second,
			Duration:     125 * time.Second,
			Volume:       0.5,
			MaxVolume:    1.2,
			SampleRate:   48000,
			OriginalRate: 48000,
			Speed:        1,
			Repeat:       catalog.RepeatTrack,
		},
		Names: []string{"a.wav", "b.wav", "c.wav"},
	}
}

func TestPresentDrawsAllRegions(t *testing.T) {
	var buf bytes.Buffer
	g := NewGate(&buf, 60, 20)

	wrote, err := g.Present(sampleFrame())
	if err != nil || !wrote {
		t.Fatalf("Present = %v, %v", wrote, err)
	}
	out := buf.String()
	for _, want := range []string{"\x1b[H", "(paused) 1:05 / 2:05", "volume:  50%", "total: 2 / 3", "(repeat track)", "Song B", "Album", "c.wav"} {
		if !strings.Contains(out, want) {
			t.Errorf("screen is missing %q", want)
		}
	}

	buf.Reset()
	if wrote, _ := g.Present(sampleFrame()); wrote || buf.Len() != 0 {
		t.Fatal("a clean gate must not redraw")
	}
}

func TestStatusShowsSpeedAndMute(t *testing.T) {
	var buf bytes.Buffer
	g := NewGate(&buf, 60, 20)
	f := sampleFrame()
	f.Status.State = player.StatePlaying
	f.Status.SampleRate = 49000
	f.Status.Speed = 49000.0 / 48000
	f.Status.Muted = true

	g.Present(f)
	out := buf.String()
	if strings.Contains(out, "(paused)") {
		t.Error("playing track rendered as paused")
	}
	for _, want := range []string{"(102%)", "volume: muted"} {
		if !strings.Contains(out, want) {
			t.Errorf("screen is missing %q", want)
		}
	}
}

func TestTitleFallsBackToFileName(t *testing.T) {
	var buf bytes.Buffer
	g := NewGate(&buf, 60, 20)
	f := sampleFrame()
	f.Status.Track.Title = ""
	f.Status.Track.Path = "/music/untagged.flac"

	g.Present(f)
	if !strings.Contains(buf.String(), "untagged.flac") {
		t.Fatal("expected the file name as title")
	}
}

func TestTooSmall(t *testing.T) {
	var buf bytes.Buffer
	g := NewGate(&buf, 40, 8)
	g.Present(sampleFrame())
	out := buf.String()
	if !strings.Contains(out, "too small") || strings.Contains(out, "total:") {
		t.Fatalf("unexpected small screen: %q", out)
	}
}

func TestBottomLine(t *testing.T) {
	var buf bytes.Buffer
	g := NewGate(&buf, 60, 20)
	f := sampleFrame()
	f.Status.Query = "wav"
	f.Status.MatchPos, f.Status.MatchCount = 2, 3

	g.Present(f)
	if !strings.Contains(buf.String(), "'wav' [2/3]") {
		t.Fatal("missing search summary")
	}

	buf.Reset()
	f.Prompting, f.Prompt = true, "select: 12"
	g.Invalidate(RegionBottom)
	g.Present(f)
	if !strings.Contains(buf.String(), "select: 12") {
		t.Fatal("missing prompt")
	}
}

func manyNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("track%02d.mp3", i)
	}
	return names
}

func TestListFollowsSelection(t *testing.T) {
	var buf bytes.Buffer
	g := NewGate(&buf, 60, 20) // 13 list rows
	f := sampleFrame()
	f.Names = manyNames(60)
	f.Status.Count = 60
	f.Status.Selected = 40

	g.Present(f)
	if got := g.ctx.FirstInList; got != 28 {
		t.Fatalf("first row = %d, want 28", got)
	}

	g.CenterOnSelection()
	g.Present(f)
	if got := g.ctx.FirstInList; got != 34 {
		t.Fatalf("centered first row = %d, want 34", got)
	}

	f.Status.Selected = 59
	g.CenterOnSelection()
	g.Present(f)
	if got := g.ctx.FirstInList; got != 47 {
		t.Fatalf("first row at the end = %d, want 47", got)
	}
}

func TestVisualizerStrip(t *testing.T) {
	var buf bytes.Buffer
	g := NewGate(&buf, 60, 20)
	g.SetVisualizer(true)

	f := sampleFrame()
	frames := make([][2]float64, 512)
	for i := range frames {
		frames[i] = [2]float64{1, 1}
	}
	var pub visualizer.Publisher
	pub.Publish(frames, 2)
	f.Chunk = pub.Latest()
	f.Sampler = visualizer.Sampler{Mode: visualizer.Peak, Scalar: 9}

	g.Present(f)
	if !strings.Contains(buf.String(), "████") {
		t.Fatal("expected full bars for a full-scale chunk")
	}
}

type fakeController struct {
	calls  []string
	names  []string
	status player.Status
	found  bool
	done   chan struct{}
	vis    visualizer.Publisher
}

func newFake() *fakeController {
	return &fakeController{names: manyNames(30), done: make(chan struct{}), found: true}
}

func (f *fakeController) rec(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeController) Snapshot() player.Status                  { return f.status }
func (f *fakeController) Names() []string                          { return f.names }
func (f *fakeController) Subscribe(func(player.Event)) func()      { return func() {} }
func (f *fakeController) Visualizer() *visualizer.Publisher        { return &f.vis }
func (f *fakeController) Done() <-chan struct{}                    { return f.done }
func (f *fakeController) AddVolume(d float64)                      { f.rec("volume %+.2f", d) }
func (f *fakeController) ToggleMute()                              { f.rec("mute") }
func (f *fakeController) SeekBy(d time.Duration) error             { f.rec("seek %v", d); return nil }
func (f *fakeController) SeekString(s string) error                { f.rec("seek %s", s); return nil }
func (f *fakeController) AddSpeed(hz int)                          { f.rec("speed %+d", hz) }
func (f *fakeController) RestoreSpeed()                            { f.rec("restore") }
func (f *fakeController) TogglePause()                             { f.rec("toggle") }
func (f *fakeController) Next()                                    { f.rec("next") }
func (f *fakeController) Prev()                                    { f.rec("prev") }
func (f *fakeController) PlaySelected()                            { f.rec("play") }
func (f *fakeController) CycleRepeat()                             { f.rec("repeat") }
func (f *fakeController) Quit()                                    { f.rec("quit") }
func (f *fakeController) SelectDown()                              { f.rec("down") }
func (f *fakeController) SelectUp()                                { f.rec("up") }
func (f *fakeController) SelectFirst()                             { f.rec("first") }
func (f *fakeController) SelectLast()                              { f.rec("last") }
func (f *fakeController) SelectCurrent()                           { f.rec("current") }
func (f *fakeController) SelectPage(n int)                         { f.rec("page %d", n) }
func (f *fakeController) SelectIndex(i int)                        { f.rec("index %d", i) }
func (f *fakeController) JumpMatch(d search.Direction) bool        { f.rec("jump %d", d); return f.found }
func (f *fakeController) Search(q string, d search.Direction) bool {
	f.rec("search %s %d", q, d)
	return f.found
}

func newApp(ctl *fakeController) *App {
	a := &App{Ctl: ctl, Gate: NewGate(&bytes.Buffer{}, 60, 20), SeekStep: 5 * time.Second}
	a.defaults()
	return a
}

func feed(a *App, keys ...Key) bool {
	now := time.Unix(0, 0)
	for _, k := range keys {
		if !a.handleKey(k, now) {
			return false
		}
	}
	return true
}

func runes(s string) []Key {
	var keys []Key
	for _, r := range s {
		keys = append(keys, Rune(r))
	}
	return keys
}

func TestKeyMap(t *testing.T) {
	tests := []struct {
		name string
		keys []Key
		want []string
	}{
		{"volume", runes("0)9("), []string{"volume +0.05", "volume +0.01", "volume -0.05", "volume -0.01"}},
		{"seek", append(runes("lh"), Key{Code: KeyRight}, Key{Code: KeyLeft}), []string{"seek 5s", "seek -5s", "seek 5s", "seek -5s"}},
		{"tracks", append(runes("oi "), Key{Code: KeyEnter}), []string{"next", "prev", "toggle", "play"}},
		{"navigation", runes("jkgG"), []string{"down", "up", "first", "last"}},
		{"paging", []Key{{Code: KeyPgDn}, Ctrl('d'), Ctrl('f'), {Code: KeyPgUp}, Ctrl('b'), Ctrl('u')},
			[]string{"page 22", "page 22", "page 22", "page -22", "page -22", "page -22"}},
		{"speed", runes("[]{}\\"), []string{"speed -1000", "speed +1000", "speed -100", "speed +100", "restore"}},
		{"misc", runes("rmzx"), []string{"repeat", "mute", "current"}},
		{"matches", runes("nN"), []string{"jump 0", "jump 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := newFake()
			a := newApp(ctl)
			if !feed(a, tt.keys...) {
				t.Fatal("unexpected quit")
			}
			if !reflect.DeepEqual(ctl.calls, tt.want) {
				t.Fatalf("calls = %v, want %v", ctl.calls, tt.want)
			}
		})
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []Key{Rune('q'), Ctrl('c')} {
		ctl := newFake()
		if feed(newApp(ctl), k) {
			t.Fatalf("%v did not quit", k)
		}
		if !reflect.DeepEqual(ctl.calls, []string{"quit"}) {
			t.Fatalf("calls = %v", ctl.calls)
		}
	}
}

func TestPrompts(t *testing.T) {
	tests := []struct {
		name string
		keys []Key
		want []string
	}{
		{"forward search", append(runes("/abc"), Key{Code: KeyEnter}), []string{"search abc 0"}},
		{"backward search", append(runes(",x"), Key{Code: KeyEnter}), []string{"search x 1"}},
		{"cancelled search", append(runes("/abc"), Key{Code: KeyEsc}), nil},
		{"empty search", append(runes("/"), Key{Code: KeyEnter}), nil},
		{"seek prompt", append(runes("t1:30"), Key{Code: KeyEnter}), []string{"seek 1:30"}},
		{"jump", append(runes(":5"), Key{Code: KeyEnter}), []string{"index 4"}},
		{"jump clamps high", append(runes(":99"), Key{Code: KeyEnter}), []string{"index 29"}},
		{"jump clamps low", append(runes(":0"), Key{Code: KeyEnter}), []string{"index 0"}},
		{"jump ignores text", append(runes(":abc"), Key{Code: KeyEnter}), nil},
		{"keys go to the prompt", append(runes("/qo"), Key{Code: KeyEnter}), []string{"search qo 0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := newFake()
			a := newApp(ctl)
			if !feed(a, tt.keys...) {
				t.Fatal("unexpected quit")
			}
			if !reflect.DeepEqual(ctl.calls, tt.want) {
				t.Fatalf("calls = %v, want %v", ctl.calls, tt.want)
			}
			if a.prompt != nil {
				t.Fatal("prompt still open")
			}
		})
	}
}

func TestPromptExpiresOnTick(t *testing.T) {
	ctl := newFake()
	a := newApp(ctl)
	a.PromptTimeout = time.Second
	start := time.Unix(0, 0)
	a.handleKey(Rune('/'), start)
	a.handleKey(Rune('a'), start)

	a.onTick(start.Add(2 * time.Second))
	if a.prompt != nil {
		t.Fatal("prompt should have been cancelled")
	}
	if len(ctl.calls) != 0 {
		t.Fatalf("calls = %v", ctl.calls)
	}
}

func TestVisualizerToggle(t *testing.T) {
	a := newApp(newFake())
	feed(a, Rune('v'))
	if !a.Gate.VisualizerShown() {
		t.Fatal("v should show the visualizer")
	}
	feed(a, Rune('V'))
	if a.Gate.VisualizerShown() {
		t.Fatal("V should hide it again")
	}
}

func TestRunStopsWhenPlayerDone(t *testing.T) {
	ctl := newFake()
	a := newApp(ctl)
	keys := make(chan Key)
	a.Keys = keys
	close(ctl.done)

	errc := make(chan error, 1)
	go func() { errc <- a.Run(t.Context()) }()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}
