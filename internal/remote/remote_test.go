/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"kmp/internal/catalog"
	"kmp/internal/player"
	"kmp/pkg/audioengine"
)

type fakeController struct {
	mu     sync.Mutex
	calls  []string
	status player.Status
	subs   []func(player.Event)
}

func (f *fakeController) record(format string, args ...any) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	f.mu.Unlock()
}

func (f *fakeController) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *fakeController) Snapshot() player.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeController) Names() []string { return []string{"a.flac", "b.mp3"} }

func (f *fakeController) Subscribe(fn func(player.Event)) func() {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	i := len(f.subs) - 1
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.subs[i] = nil
		f.mu.Unlock()
	}
}

func (f *fakeController) fire(ev player.Event) {
	f.mu.Lock()
	subs := slices.Clone(f.subs)
	f.mu.Unlock()
	for _, fn := range subs {
		if fn != nil {
			fn(ev)
		}
	}
}

func (f *fakeController) PlayIndex(i int)                { f.record("play %d", i) }
func (f *fakeController) Pause()                         { f.record("pause") }
func (f *fakeController) Resume()                        { f.record("resume") }
func (f *fakeController) TogglePause()                   { f.record("toggle") }
func (f *fakeController) Next()                          { f.record("next") }
func (f *fakeController) Prev()                          { f.record("prev") }
func (f *fakeController) Quit()                          { f.record("quit") }
func (f *fakeController) SetVolume(v float64)            { f.record("volume %.2f", v) }
func (f *fakeController) ToggleMute()                    { f.record("mute") }
func (f *fakeController) SetRepeat(m catalog.RepeatMode) { f.record("repeat %s", m) }
func (f *fakeController) AddSpeed(hz int)                { f.record("speed %d", hz) }
func (f *fakeController) RestoreSpeed()                  { f.record("speed reset") }

func (f *fakeController) SeekString(s string) error {
	if _, err := player.ParseSeek(s); err != nil {
		return err
	}
	f.record("seek %s", s)
	return nil
}

func (f *fakeController) SeekAbsolute(at time.Duration) error {
	f.record("seekabs %v", at)
	return nil
}

func (f *fakeController) SeekBy(d time.Duration) error {
	f.record("seekby %v", d)
	return nil
}

func startSocket(t *testing.T, ctl Controller) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kmp.sock")
	s := NewSocket(path, ctl, nil)
	ln, err := s.Listen()
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return path
}

func dial(t *testing.T, path string) *Client {
	t.Helper()
	c, err := Dial(path, time.Second)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSocketControlCommands(t *testing.T) {
	ctl := &fakeController{status: player.Status{Count: 2}}
	c := dial(t, startSocket(t, ctl))

	for _, line := range []string{"PLAY 1", "pause", "RESUME", "TOGGLE", "NEXT", "PREV", "VOLUME 0.5",
		"SEEK 1:30", "REPEAT playlist", "SPEED -100", "SPEED reset", "MUTE", "QUIT"} {
		reply, err := c.Do(line)
		if err != nil || reply != "OK" {
			t.Errorf("%s: reply %q, err %v", line, reply, err)
		}
	}
	want := []string{"play 1", "pause", "resume", "toggle", "next", "prev", "volume 0.50",
		"seek 1:30", "repeat playlist", "speed -100", "speed reset", "mute", "quit"}
	if got := ctl.Calls(); !slices.Equal(got, want) {
		t.Errorf("calls = %q\nwant %q", got, want)
	}
}

func TestSocketRejectsBadArguments(t *testing.T) {
	ctl := &fakeController{status: player.Status{Count: 2}}
	c := dial(t, startSocket(t, ctl))

	for _, line := range []string{"PLAY 2", "PLAY x", "VOLUME loud", "SEEK soon", "REPEAT maybe", "DANCE"} {
		if _, err := c.Do(line); !errors.Is(err, ErrRejected) {
			t.Errorf("%s: err = %v, want ErrRejected", line, err)
		}
	}
	if calls := ctl.Calls(); len(calls) != 0 {
		t.Errorf("controller was called: %q", calls)
	}
}

func TestSocketQueries(t *testing.T) {
	ctl := &fakeController{status: player.Status{
		State:    player.StatePlaying,
		Count:    2,
		Index:    1,
		Track:    audioengine.Track{Path: "/m/b.mp3", Title: "B"},
		Position: 1500 * time.Millisecond,
		Repeat:   catalog.RepeatTrack,
	}}
	c := dial(t, startSocket(t, ctl))

	if reply, _ := c.Do("PING"); reply != "PONG" {
		t.Errorf("PING = %q", reply)
	}
	if reply, _ := c.Do("WHOAMI"); reply != "OBSERVER" {
		t.Errorf("WHOAMI = %q, want OBSERVER before any control command", reply)
	}

	reply, err := c.Do("STATUS")
	if err != nil {
		t.Fatalf("STATUS: %v", err)
	}
	var st statusView
	if err := json.Unmarshal([]byte(reply), &st); err != nil {
		t.Fatalf("STATUS reply %q: %v", reply, err)
	}
	if st.Index != 1 || st.Title != "B" || st.PositionMS != 1500 || st.Repeat != "track" {
		t.Errorf("status = %+v", st)
	}

	reply, _ = c.Do("LIST")
	if !strings.Contains(reply, `"name":"b.mp3"`) {
		t.Errorf("LIST = %q", reply)
	}
}

func TestSocketSingleOwner(t *testing.T) {
	ctl := &fakeController{status: player.Status{Count: 2}}
	path := startSocket(t, ctl)
	owner := dial(t, path)
	other := dial(t, path)

	if _, err := owner.Do("NEXT"); err != nil {
		t.Fatalf("owner NEXT: %v", err)
	}
	if _, err := other.Do("NEXT"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("observer NEXT err = %v, want ErrNotOwner", err)
	}
	if reply, _ := other.Do("STATUS"); !strings.HasPrefix(reply, "{") {
		t.Errorf("observer STATUS = %q", reply)
	}

	owner.Close()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := other.Do("PREV"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("ownership was not released")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSocketForwardsEventsToOwner(t *testing.T) {
	ctl := &fakeController{status: player.Status{Count: 2}}
	c := dial(t, startSocket(t, ctl))
	if _, err := c.Do("NEXT"); err != nil {
		t.Fatalf("NEXT: %v", err)
	}

	ctl.fire(player.Event{Type: player.EventVolume, Status: player.Status{Volume: 0.7}})
	line, err := c.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	body, ok := strings.CutPrefix(line, "EVENT ")
	if !ok {
		t.Fatalf("line = %q, want an EVENT", line)
	}
	var ev eventView
	if err := json.Unmarshal([]byte(body), &ev); err != nil {
		t.Fatalf("event %q: %v", body, err)
	}
	if ev.Type != "VOLUME" || ev.Status.Volume != 0.7 {
		t.Errorf("event = %+v", ev)
	}
}

func TestMetadata(t *testing.T) {
	s := player.Status{
		Index:    3,
		Track:    audioengine.Track{Path: "/music/x.flac", Title: "X", Artist: "Y", Album: "Z"},
		Duration: 2 * time.Second,
	}
	md := metadata(s)
	if got := md["mpris:trackid"].Value(); got != dbus.ObjectPath("/org/kmp/track/3") {
		t.Errorf("trackid = %v", got)
	}
	if got := md["mpris:length"].Value(); got != int64(2_000_000) {
		t.Errorf("length = %v", got)
	}
	if got := md["xesam:artist"].Value().([]string); !slices.Equal(got, []string{"Y"}) {
		t.Errorf("artist = %v", got)
	}
	if got := md["xesam:url"].Value(); got != "file:///music/x.flac" {
		t.Errorf("url = %v", got)
	}
	if _, ok := metadata(player.Status{})["xesam:title"]; ok {
		t.Error("empty status has a title")
	}
}

func TestStatusMappings(t *testing.T) {
	if playbackStatus(player.StatePaused) != "Paused" || playbackStatus(player.StateStopped) != "Stopped" {
		t.Error("playbackStatus mapping")
	}
	for _, m := range []catalog.RepeatMode{catalog.RepeatNone, catalog.RepeatTrack, catalog.RepeatPlaylist} {
		back, err := catalog.ParseRepeat(loopStatus(m))
		if err != nil || back != m {
			t.Errorf("loopStatus(%v) = %q does not parse back", m, loopStatus(m))
		}
	}
}

func TestMPRISPlayerMethods(t *testing.T) {
	ctl := &fakeController{status: player.Status{Index: 0, Duration: time.Minute}}
	p := &mprisPlayer{ctl: ctl}

	p.PlayPause()
	p.SeekOffset(-2_000_000)
	p.SetPosition(trackID(0), 5_000_000)
	p.SetPosition(trackID(1), 5_000_000)
	p.SetPosition(trackID(0), int64(2*time.Minute/time.Microsecond))

	want := []string{"toggle", "seekby -2s", "seekabs 5s"}
	if got := ctl.Calls(); !slices.Equal(got, want) {
		t.Errorf("calls = %q, want %q", got, want)
	}
}

func TestMPRISPlayerIntrospectsBusNames(t *testing.T) {
	names := map[string]bool{}
	for _, m := range playerMethods(&mprisPlayer{}) {
		names[m.Name] = true
	}
	tests := []struct {
		name string
		want bool
	}{
		{"Seek", true},
		{"SetPosition", true},
		{"PlayPause", true},
		{"SeekOffset", false},
	}
	for _, tt := range tests {
		if names[tt.name] != tt.want {
			t.Errorf("method %s exported = %v, want %v", tt.name, names[tt.name], tt.want)
		}
	}
}
