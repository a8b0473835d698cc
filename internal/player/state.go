/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package player owns the playback cursor and the session loop that streams the
// current track into an audio sink. Every field shared between the control side and
// the audio callback lives in Player and is guarded by Player.mu.
package player

import (
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"kmp/internal/catalog"
	"kmp/internal/search"
	"kmp/internal/visualizer"
	"kmp/pkg/audioengine"
	"kmp/pkg/defaults"
)

var (
	ErrNoTrack     = errors.New("no track loaded")
	ErrInvalidSeek = errors.New("invalid seek position")
	ErrStopped     = errors.New("player stopped")
)

// Options configures a Player. Zero numeric fields take the values from pkg/defaults.
type Options struct {
	Opener  audioengine.Opener
	Sinks   audioengine.SinkOpener
	Catalog *catalog.Catalog
	Logger  *slog.Logger

	Volume      float64
	MinVolume   float64
	MaxVolume   float64
	VolumePower float64
	Muted       bool

	MinSampleRate int
	MaxSampleRate int
}

// Player is the playback cursor plus everything that drives it.
type Player struct {
	mu        sync.Mutex
	pauseCond *sync.Cond

	opener audioengine.Opener
	sinks  audioengine.SinkOpener
	log    *slog.Logger
	vis    visualizer.Publisher

	cat    *catalog.Catalog
	search search.State

	track audioengine.Track
	dec   audioengine.Decoder

	pcmPos  uint64
	pcmSize uint64
	ended   bool

	paused bool
	muted  bool
	volume float64

	sampleRate   int
	originalRate int
	speed        float64
	changeParams bool

	finished bool
	stopped  bool
	next     bool
	prev     bool
	newTrack bool
	skip     bool

	played     bool // the current track produced at least one frame
	readFailed bool

	minVolume, maxVolume float64
	volumePower          float64
	minRate, maxRate     int

	wake chan struct{}
	done chan struct{}

	listenMu  sync.Mutex
	listeners map[int]func(Event)
	listenID  int
}

func New(opts Options) (*Player, error) {
	if opts.Catalog == nil || opts.Catalog.Len() == 0 {
		return nil, catalog.ErrNoTracks
	}
	if opts.Opener == nil || opts.Sinks == nil {
		return nil, errors.New("player needs an opener and a sink")
	}
	p := &Player{
		opener:      opts.Opener,
		sinks:       opts.Sinks,
		log:         opts.Logger,
		cat:         opts.Catalog,
		muted:       opts.Muted,
		speed:       1,
		minVolume:   opts.MinVolume,
		maxVolume:   or(opts.MaxVolume, defaults.MaxVolume),
		volumePower: or(opts.VolumePower, defaults.VolumePower),
		minRate:     or(opts.MinSampleRate, defaults.MinSampleRate),
		maxRate:     or(opts.MaxSampleRate, defaults.MaxSampleRate),
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
		listeners:   map[int]func(Event){},
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	p.pauseCond = sync.NewCond(&p.mu)
	p.volume = p.clampVolume(or(opts.Volume, defaults.Volume))
	return p, nil
}

func or[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}

// Visualizer exposes the chunk publisher the audio callback writes to.
func (p *Player) Visualizer() *visualizer.Publisher { return &p.vis }

// Done is closed when Run returns.
func (p *Player) Done() <-chan struct{} { return p.done }

// Status is a consistent copy of the playback state, safe to read without locks.
type Status struct {
	State        string
	Index        int
	Count        int
	Selected     int
	Track        audioengine.Track
	Position     time.Duration
	Duration     time.Duration
	Volume       float64
	MaxVolume    float64
	Muted        bool
	SampleRate   int
	OriginalRate int
	Speed        float64
	Repeat       catalog.RepeatMode
	Query        string
	MatchPos     int
	MatchCount   int
}

const (
	StatePlaying = "playing"
	StatePaused  = "paused"
	StateStopped = "stopped"
)

// Snapshot returns the current status.
func (p *Player) Snapshot() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusLocked()
}

func (p *Player) statusLocked() Status {
	s := Status{
		State:        StatePlaying,
		Index:        p.cat.Current(),
		Count:        p.cat.Len(),
		Selected:     p.cat.Selected(),
		Track:        p.track,
		Duration:     p.track.Duration(),
		Volume:       p.volume,
		MaxVolume:    p.maxVolume,
		Muted:        p.muted,
		SampleRate:   p.sampleRate,
		OriginalRate: p.originalRate,
		Speed:        p.speed,
		Repeat:       p.cat.Repeat,
		Query:        p.search.Query,
		MatchPos:     p.search.Position(),
		MatchCount:   len(p.search.Matches),
	}
	switch {
	case p.stopped || p.track.Path == "":
		s.State = StateStopped
	case p.paused:
		s.State = StatePaused
	}
	if p.track.SampleRate > 0 && p.track.Channels > 0 {
		frames := p.pcmPos / uint64(p.track.Channels)
		s.Position = time.Duration(float64(frames) / float64(p.track.SampleRate) * float64(time.Second))
	}
	return s
}

// Names returns the display names of the list.
func (p *Player) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cat.Names()
}

// Gain is the output multiplier for the current volume and mute state.
func (p *Player) Gain() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return audioengine.Gain(p.volume, p.volumePower, p.muted)
}

func (p *Player) clampVolume(v float64) float64 {
	if math.IsNaN(v) {
		return p.volume
	}
	return max(p.minVolume, min(v, p.maxVolume))
}

func (p *Player) clampRate(r int) int {
	return max(p.minRate, min(r, p.maxRate))
}

// trackRequestedLocked reports a pending request to leave the current track.
func (p *Player) trackRequestedLocked() bool {
	return p.next || p.prev || p.newTrack
}

// signal wakes the session loop. It never blocks; one pending wake is enough
// because the loop re-reads the whole state.
func (p *Player) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}
