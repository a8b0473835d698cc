/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package remote lets other processes drive the player: a line protocol on a unix
// socket and an MPRIS service on the D-Bus session bus.
package remote

import (
	"time"

	"kmp/internal/catalog"
	"kmp/internal/player"
)

// Controller is the part of the player the bridges use. It is the same set of
// operations the keyboard reaches.
type Controller interface {
	Snapshot() player.Status
	Names() []string
	Subscribe(fn func(player.Event)) func()

	PlayIndex(i int)
	Pause()
	Resume()
	TogglePause()
	Next()
	Prev()
	Quit()
	SetVolume(v float64)
	ToggleMute()
	SeekString(s string) error
	SeekAbsolute(at time.Duration) error
	SeekBy(d time.Duration) error
	SetRepeat(m catalog.RepeatMode)
	AddSpeed(deltaHz int)
	RestoreSpeed()
}

var _ Controller = (*player.Player)(nil)

// statusView is the JSON shape of a status on the socket.
type statusView struct {
	State      string  `json:"state"`
	Index      int     `json:"index"`
	Count      int     `json:"count"`
	Path       string  `json:"path"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist,omitempty"`
	Album      string  `json:"album,omitempty"`
	PositionMS int64   `json:"position_ms"`
	DurationMS int64   `json:"duration_ms"`
	Volume     float64 `json:"volume"`
	Muted      bool    `json:"muted"`
	SampleRate int     `json:"sample_rate"`
	Speed      float64 `json:"speed"`
	Repeat     string  `json:"repeat"`
}

func viewOf(s player.Status) statusView {
	return statusView{
		State:      s.State,
		Index:      s.Index,
		Count:      s.Count,
		Path:       s.Track.Path,
		Title:      s.Track.Title,
		Artist:     s.Track.Artist,
		Album:      s.Track.Album,
		PositionMS: s.Position.Milliseconds(),
		DurationMS: s.Duration.Milliseconds(),
		Volume:     s.Volume,
		Muted:      s.Muted,
		SampleRate: s.SampleRate,
		Speed:      s.Speed,
		Repeat:     s.Repeat.String(),
	}
}
