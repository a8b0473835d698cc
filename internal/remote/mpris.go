/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package remote

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"path/filepath"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"

	"kmp/internal/catalog"
	"kmp/internal/player"
	"kmp/pkg/defaults"
)

const (
	mprisPath        = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	mprisRootIface   = "org.mpris.MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
)

// mprisPlayerNames maps Go method names to their bus names where they differ.
var mprisPlayerNames = map[string]string{"SeekOffset": "Seek"}

// MPRIS publishes the player on the session bus.
type MPRIS struct {
	ctl     Controller
	log     *slog.Logger
	conn    *dbus.Conn
	props   *prop.Properties
	updates chan player.Event
	cancel  func()
}

// StartMPRIS connects to the session bus and claims name. A failure leaves the
// player untouched; callers log it and carry on without the bridge.
func StartMPRIS(ctx context.Context, name string, ctl Controller, log *slog.Logger) (*MPRIS, error) {
	if log == nil {
		log = slog.Default()
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}

	m := &MPRIS{ctl: ctl, log: log, conn: conn, updates: make(chan player.Event, 16)}
	if err := m.export(); err != nil {
		conn.Close()
		return nil, err
	}

	reply, err := conn.RequestName(name, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request name %s: %w", name, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("name %s already taken", name)
	}

	unsubscribe := ctl.Subscribe(func(ev player.Event) {
		select {
		case m.updates <- ev:
		default:
		}
	})
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.loop(ctx)
	}()
	m.cancel = func() {
		unsubscribe()
		cancel()
		<-done
	}
	return m, nil
}

func (m *MPRIS) Close() error {
	m.cancel()
	return m.conn.Close()
}

func (m *MPRIS) export() error {
	s := m.ctl.Snapshot()
	root := &mprisRoot{ctl: m.ctl}
	pl := &mprisPlayer{ctl: m.ctl}

	if err := m.conn.Export(root, mprisPath, mprisRootIface); err != nil {
		return err
	}
	if err := m.conn.ExportWithMap(pl, mprisPlayerNames, mprisPath, mprisPlayerIface); err != nil {
		return err
	}

	props, err := prop.Export(m.conn, mprisPath, prop.Map{
		mprisRootIface: {
			"CanQuit":             {Value: true, Emit: prop.EmitTrue},
			"CanRaise":            {Value: false, Emit: prop.EmitTrue},
			"HasTrackList":        {Value: false, Emit: prop.EmitTrue},
			"Identity":            {Value: defaults.AppName, Emit: prop.EmitTrue},
			"SupportedUriSchemes": {Value: []string{"file"}, Emit: prop.EmitTrue},
			"SupportedMimeTypes":  {Value: []string{"audio/flac", "audio/mpeg", "audio/ogg", "audio/opus", "audio/wav", "audio/aiff"}, Emit: prop.EmitTrue},
		},
		mprisPlayerIface: {
			"PlaybackStatus": {Value: playbackStatus(s.State), Emit: prop.EmitTrue},
			"LoopStatus":     {Value: loopStatus(s.Repeat), Writable: true, Emit: prop.EmitTrue, Callback: pl.setLoopStatus},
			"Rate":           {Value: rate(s), Emit: prop.EmitTrue},
			"Shuffle":        {Value: false, Emit: prop.EmitTrue},
			"Metadata":       {Value: metadata(s), Emit: prop.EmitTrue},
			"Volume":         {Value: s.Volume, Writable: true, Emit: prop.EmitTrue, Callback: pl.setVolume},
			"Position":       {Value: s.Position.Microseconds(), Emit: prop.EmitFalse},
			"MinimumRate":    {Value: 1.0, Emit: prop.EmitTrue},
			"MaximumRate":    {Value: 1.0, Emit: prop.EmitTrue},
			"CanGoNext":      {Value: true, Emit: prop.EmitTrue},
			"CanGoPrevious":  {Value: true, Emit: prop.EmitTrue},
			"CanPlay":        {Value: true, Emit: prop.EmitTrue},
			"CanPause":       {Value: true, Emit: prop.EmitTrue},
			"CanSeek":        {Value: true, Emit: prop.EmitTrue},
			"CanControl":     {Value: true, Emit: prop.EmitFalse},
		},
	})
	if err != nil {
		return err
	}
	m.props = props

	node := &introspect.Node{
		Name: string(mprisPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{Name: mprisRootIface, Methods: introspect.Methods(root), Properties: props.Introspection(mprisRootIface)},
			{Name: mprisPlayerIface, Methods: playerMethods(pl), Properties: props.Introspection(mprisPlayerIface)},
		},
	}
	return m.conn.Export(introspect.NewIntrospectable(node), mprisPath, "org.freedesktop.DBus.Introspectable")
}

func playerMethods(pl *mprisPlayer) []introspect.Method {
	methods := introspect.Methods(pl)
	for i, m := range methods {
		if name, ok := mprisPlayerNames[m.Name]; ok {
			methods[i].Name = name
		}
	}
	return methods
}

// loop applies player events to the exported properties. Properties are set from
// here and never from the subscriber, which may run inside a property callback.
func (m *MPRIS) loop(ctx context.Context) {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.updates:
			m.apply(ev)
		case <-tick.C:
			m.props.SetMust(mprisPlayerIface, "Position", m.ctl.Snapshot().Position.Microseconds())
		}
	}
}

func (m *MPRIS) apply(ev player.Event) {
	s := ev.Status
	m.props.SetMust(mprisPlayerIface, "Position", s.Position.Microseconds())
	switch ev.Type {
	case player.EventTrack:
		m.props.SetMust(mprisPlayerIface, "Metadata", metadata(s))
		m.props.SetMust(mprisPlayerIface, "PlaybackStatus", playbackStatus(s.State))
		m.props.SetMust(mprisPlayerIface, "Rate", rate(s))
	case player.EventStatus, player.EventStopped:
		m.props.SetMust(mprisPlayerIface, "PlaybackStatus", playbackStatus(s.State))
	case player.EventVolume:
		vol := s.Volume
		if s.Muted {
			vol = 0
		}
		m.props.SetMust(mprisPlayerIface, "Volume", vol)
	case player.EventRepeat:
		m.props.SetMust(mprisPlayerIface, "LoopStatus", loopStatus(s.Repeat))
	case player.EventSpeed:
		m.props.SetMust(mprisPlayerIface, "Rate", rate(s))
	case player.EventSeeked:
		if err := m.conn.Emit(mprisPath, mprisPlayerIface+".Seeked", s.Position.Microseconds()); err != nil {
			m.log.Warn("mpris seeked signal", "err", err)
		}
	}
}

func playbackStatus(state string) string {
	switch state {
	case player.StatePlaying:
		return "Playing"
	case player.StatePaused:
		return "Paused"
	}
	return "Stopped"
}

func loopStatus(m catalog.RepeatMode) string {
	switch m {
	case catalog.RepeatTrack:
		return "Track"
	case catalog.RepeatPlaylist:
		return "Playlist"
	}
	return "None"
}

func rate(s player.Status) float64 {
	if s.Speed <= 0 {
		return 1
	}
	return s.Speed
}

func trackID(i int) dbus.ObjectPath {
	return dbus.ObjectPath(fmt.Sprintf("/org/%s/track/%d", defaults.AppName, i))
}

func metadata(s player.Status) map[string]dbus.Variant {
	md := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(trackID(s.Index)),
		"mpris:length":  dbus.MakeVariant(s.Duration.Microseconds()),
	}
	if s.Track.Path == "" {
		return md
	}
	md["xesam:title"] = dbus.MakeVariant(s.Track.Title)
	if s.Track.Artist != "" {
		md["xesam:artist"] = dbus.MakeVariant([]string{s.Track.Artist})
	}
	if s.Track.Album != "" {
		md["xesam:album"] = dbus.MakeVariant(s.Track.Album)
	}
	if abs, err := filepath.Abs(s.Track.Path); err == nil {
		md["xesam:url"] = dbus.MakeVariant((&url.URL{Scheme: "file", Path: abs}).String())
	}
	return md
}

type mprisRoot struct {
	ctl Controller
}

func (r *mprisRoot) Raise() *dbus.Error { return nil }

func (r *mprisRoot) Quit() *dbus.Error {
	r.ctl.Quit()
	return nil
}

type mprisPlayer struct {
	ctl Controller
}

func (p *mprisPlayer) Next() *dbus.Error     { p.ctl.Next(); return nil }
func (p *mprisPlayer) Previous() *dbus.Error { p.ctl.Prev(); return nil }
func (p *mprisPlayer) Pause() *dbus.Error    { p.ctl.Pause(); return nil }
func (p *mprisPlayer) Play() *dbus.Error     { p.ctl.Resume(); return nil }
func (p *mprisPlayer) Stop() *dbus.Error     { p.ctl.Quit(); return nil }

func (p *mprisPlayer) PlayPause() *dbus.Error {
	p.ctl.TogglePause()
	return nil
}

// SeekOffset implements the bus method Seek: it moves by offset microseconds.
func (p *mprisPlayer) SeekOffset(offset int64) *dbus.Error {
	if err := p.ctl.SeekBy(time.Duration(offset) * time.Microsecond); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// SetPosition is ignored unless trackID names the current track.
func (p *mprisPlayer) SetPosition(id dbus.ObjectPath, position int64) *dbus.Error {
	s := p.ctl.Snapshot()
	if id != trackID(s.Index) || position < 0 || time.Duration(position)*time.Microsecond > s.Duration {
		return nil
	}
	if err := p.ctl.SeekAbsolute(time.Duration(position) * time.Microsecond); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (p *mprisPlayer) OpenUri(string) *dbus.Error {
	return dbus.MakeFailedError(fmt.Errorf("opening URIs is not supported"))
}

func (p *mprisPlayer) setVolume(c *prop.Change) *dbus.Error {
	v, ok := c.Value.(float64)
	if !ok || math.IsNaN(v) {
		return prop.ErrInvalidArg
	}
	p.ctl.SetVolume(v)
	return nil
}

func (p *mprisPlayer) setLoopStatus(c *prop.Change) *dbus.Error {
	s, ok := c.Value.(string)
	if !ok {
		return prop.ErrInvalidArg
	}
	m, err := catalog.ParseRepeat(s)
	if err != nil {
		return prop.ErrInvalidArg
	}
	p.ctl.SetRepeat(m)
	return nil
}
