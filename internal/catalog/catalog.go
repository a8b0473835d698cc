/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package catalog keeps the play list and its two cursors: the track being played
// and the row the user has selected.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrNoTracks = errors.New("no playable tracks")

// RepeatMode decides what happens when a track ends on its own.
type RepeatMode int

const (
	RepeatNone RepeatMode = iota
	RepeatTrack
	RepeatPlaylist
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatTrack:
		return "track"
	case RepeatPlaylist:
		return "playlist"
	default:
		return "none"
	}
}

// Next cycles None -> Track -> Playlist -> None.
func (m RepeatMode) Next() RepeatMode {
	return (m + 1) % 3
}

// ParseRepeat accepts the names returned by String, case-insensitively.
func ParseRepeat(s string) (RepeatMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return RepeatNone, nil
	case "track", "one":
		return RepeatTrack, nil
	case "playlist", "all":
		return RepeatPlaylist, nil
	}
	return RepeatNone, fmt.Errorf("unknown repeat mode %q", s)
}

// Entry is one playable file.
type Entry struct {
	Path string
}

// Name is what the list shows and what search matches against.
func (e Entry) Name() string { return filepath.Base(e.Path) }

// Catalog is not safe for concurrent use; the player guards it with its state lock.
type Catalog struct {
	entries  []Entry
	current  int
	selected int

	Repeat RepeatMode
	Wrap   bool
}

func New(paths []string) (*Catalog, error) {
	if len(paths) == 0 {
		return nil, ErrNoTracks
	}
	c := &Catalog{entries: make([]Entry, len(paths)), Wrap: true}
	for i, p := range paths {
		c.entries[i] = Entry{Path: p}
	}
	return c, nil
}

func (c *Catalog) Len() int { return len(c.entries) }

func (c *Catalog) Entry(i int) Entry { return c.entries[i] }

// Names returns the display names in list order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name()
	}
	return names
}

func (c *Catalog) Current() int { return c.current }

func (c *Catalog) CurrentEntry() Entry { return c.entries[c.current] }

func (c *Catalog) Selected() int { return c.selected }

// Select moves the selection to pos. Out-of-range positions wrap around when wrap
// is set and clamp otherwise.
func (c *Catalog) Select(pos int, wrap bool) {
	n := len(c.entries)
	switch {
	case pos < 0 && wrap:
		pos = n - 1
	case pos >= n && wrap:
		pos = 0
	}
	c.selected = max(0, min(pos, n-1))
}

// Down and Up move by one row and honour Wrap.
func (c *Catalog) Down() { c.Select(c.selected+1, c.Wrap) }
func (c *Catalog) Up()   { c.Select(c.selected-1, c.Wrap) }

func (c *Catalog) First() { c.selected = 0 }
func (c *Catalog) Last()  { c.selected = len(c.entries) - 1 }

// Page moves the selection by delta rows, never wrapping.
func (c *Catalog) Page(delta int) { c.Select(c.selected+delta, false) }

// SelectCurrent puts the selection on the playing track.
func (c *Catalog) SelectCurrent() { c.selected = c.current }

// Request carries the explicit track change asked for since the last advance.
type Request struct {
	PlaySelected bool
	Next         bool
	Prev         bool
	// Skip moves past a track that could not be played, even in RepeatTrack.
	Skip bool
}

// Advance applies the track-change policy and reports the new current index.
// It returns false when playback should stop.
//
// Explicit selection wins over next, next over prev. Next and prev always wrap.
// Without a request the index stays put in RepeatTrack and moves forward otherwise;
// running off the end wraps only in RepeatPlaylist.
func (c *Catalog) Advance(req Request) (int, bool) {
	n := len(c.entries)
	idx := c.current
	switch {
	case req.PlaySelected:
		idx = c.selected
	case req.Next:
		idx = (idx + 1) % n
	case req.Prev:
		idx = (idx - 1 + n) % n
	case c.Repeat == RepeatTrack && !req.Skip:
	default:
		idx++
	}

	if idx < 0 || idx >= n {
		if c.Repeat != RepeatPlaylist {
			return c.current, false
		}
		idx = 0
	}
	c.current = idx
	return idx, true
}

// SetCurrent forces the playing index, clamped to the list.
func (c *Catalog) SetCurrent(i int) {
	c.current = max(0, min(i, len(c.entries)-1))
}
