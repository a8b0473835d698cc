/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package player

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// SeekTarget is a parsed position: either a time offset or a fraction of the track.
type SeekTarget struct {
	At      time.Duration
	Percent float64
	IsPct   bool
}

// ParseSeek accepts "m:ss", bare seconds ("95" or "95.5") and percentages ("40%").
func ParseSeek(s string) (SeekTarget, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SeekTarget{}, ErrInvalidSeek
	}

	if num, ok := strings.CutSuffix(s, "%"); ok {
		pct, err := strconv.ParseFloat(num, 64)
		if err != nil || pct < 0 || pct > 100 {
			return SeekTarget{}, fmt.Errorf("%w: %q", ErrInvalidSeek, s)
		}
		return SeekTarget{Percent: pct, IsPct: true}, nil
	}

	if mins, sec, ok := strings.Cut(s, ":"); ok {
		m, err := strconv.ParseUint(mins, 10, 32)
		if err != nil {
			return SeekTarget{}, fmt.Errorf("%w: %q", ErrInvalidSeek, s)
		}
		secs, err := strconv.ParseUint(sec, 10, 32)
		if err != nil || len(sec) == 0 {
			return SeekTarget{}, fmt.Errorf("%w: %q", ErrInvalidSeek, s)
		}
		return SeekTarget{At: time.Duration(m)*time.Minute + time.Duration(secs)*time.Second}, nil
	}

	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 {
		return SeekTarget{}, fmt.Errorf("%w: %q", ErrInvalidSeek, s)
	}
	return SeekTarget{At: time.Duration(secs * float64(time.Second))}, nil
}

// SeekString parses s and seeks there. Unparseable input leaves the position alone.
func (p *Player) SeekString(s string) error {
	target, err := ParseSeek(s)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if target.IsPct {
		frame := int64(float64(p.track.FrameCount) * target.Percent / 100)
		err = p.seekLocked(frame, io.SeekStart)
	} else {
		err = p.seekLocked(p.framesOf(target.At), io.SeekStart)
	}
	p.mu.Unlock()

	if err == nil {
		p.emit(EventSeeked)
	}
	return err
}

// SeekAbsolute moves to the given offset from the start of the track.
func (p *Player) SeekAbsolute(at time.Duration) error {
	p.mu.Lock()
	err := p.seekLocked(p.framesOf(at), io.SeekStart)
	p.mu.Unlock()

	if err == nil {
		p.emit(EventSeeked)
	}
	return err
}

// SeekRelative moves by deltaFrames at the track's own rate.
func (p *Player) SeekRelative(deltaFrames int64) error {
	p.mu.Lock()
	err := p.seekLocked(deltaFrames, io.SeekCurrent)
	p.mu.Unlock()

	if err == nil {
		p.emit(EventSeeked)
	}
	return err
}

// SeekBy moves by a signed duration.
func (p *Player) SeekBy(d time.Duration) error {
	p.mu.Lock()
	delta := p.framesOf(d.Abs())
	if d < 0 {
		delta = -delta
	}
	err := p.seekLocked(delta, io.SeekCurrent)
	p.mu.Unlock()

	if err == nil {
		p.emit(EventSeeked)
	}
	return err
}

func (p *Player) framesOf(d time.Duration) int64 {
	return int64(d.Seconds() * float64(p.track.SampleRate))
}

func (p *Player) seekLocked(offset int64, whence int) error {
	if p.dec == nil {
		return ErrNoTrack
	}
	if _, err := p.dec.Seek(offset, whence); err != nil {
		return err
	}
	p.pcmPos = uint64(p.dec.CurrentFrame()) * uint64(p.track.Channels)
	p.ended = false
	return nil
}
