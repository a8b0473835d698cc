/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"kmp/internal/catalog"
	"kmp/pkg/audioengine"
	"kmp/pkg/defaults"
)

type sessionState int

const (
	stateLoading sessionState = iota
	stateStreaming
	stateParamsChanging
	statePaused
	stateDraining
	stateNextTrack
	stateStopped
)

var stateNames = [...]string{"loading", "streaming", "params-changing", "paused", "draining", "next-track", "stopped"}

func (s sessionState) String() string { return stateNames[s] }

// session holds what only the Run goroutine touches.
type session struct {
	sink     audioengine.Sink
	failures int
}

// Run plays the catalog from its current index until the list is exhausted, Quit is
// called or ctx is done. It returns an error only when no sink can be opened.
func (p *Player) Run(ctx context.Context) error {
	defer close(p.done)
	stopQuit := context.AfterFunc(ctx, p.Quit)
	defer stopQuit()

	var s session
	st := stateLoading
	for {
		p.log.Debug("session state", "state", st)

		var err error
		switch st {
		case stateLoading:
			st = p.load(&s)

		case stateStreaming:
			if s.sink == nil {
				if s.sink, err = p.openSink(); err != nil {
					p.drain(&s)
					p.finish()
					return err
				}
			}
			<-p.wake
			st = p.nextState()

		case stateParamsChanging:
			p.closeSink(&s)
			p.mu.Lock()
			p.changeParams = false
			p.mu.Unlock()
			st = p.nextState()

		case statePaused:
			p.closeSink(&s)
			p.mu.Lock()
			for p.paused && !p.finished && !p.trackRequestedLocked() {
				p.pauseCond.Wait()
			}
			p.changeParams = false
			p.mu.Unlock()
			st = p.nextState()

		case stateDraining:
			p.drain(&s)
			st = p.settle(&s)

		case stateNextTrack:
			st = p.advance()

		case stateStopped:
			p.finish()
			p.emit(EventStopped)
			return nil
		}
	}
}

// nextState maps the shared flags to the state the session should be in while a
// track is open. Leaving the track wins over everything else.
func (p *Player) nextState() sessionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.finished || p.ended || p.trackRequestedLocked():
		return stateDraining
	case p.paused:
		return statePaused
	case p.changeParams:
		return stateParamsChanging
	}
	return stateStreaming
}

func (p *Player) load(s *session) sessionState {
	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return stateStopped
	}
	entry := p.cat.CurrentEntry()
	p.mu.Unlock()

	dec, track, err := p.opener.Open(entry.Path)
	if err != nil {
		p.log.Warn("unplayable track", "path", entry.Path, "err", err)
		s.failures++
		p.mu.Lock()
		p.skip = true
		count := p.cat.Len()
		p.mu.Unlock()
		if s.failures >= count {
			p.log.Warn("no track in the list could be played")
			return stateStopped
		}
		return stateNextTrack
	}
	p.mu.Lock()
	p.dec = dec
	p.played, p.readFailed = false, false
	p.track = track
	p.pcmPos = 0
	p.pcmSize = track.FrameCount * uint64(track.Channels)
	p.ended = false
	p.originalRate = track.SampleRate
	p.sampleRate = p.clampRate(int(math.Round(float64(track.SampleRate) * p.speed)))
	p.speed = float64(p.sampleRate) / float64(p.originalRate)
	p.changeParams = false
	p.mu.Unlock()

	p.log.Info("playing", "path", track.Path, "rate", track.SampleRate, "channels", track.Channels)
	p.emit(EventTrack)
	return p.nextState()
}

func (p *Player) openSink() (audioengine.Sink, error) {
	p.mu.Lock()
	f := audioengine.Format{SampleRate: p.sampleRate, Channels: p.track.Channels}
	p.mu.Unlock()

	sink, err := p.sinks.OpenSink(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", audioengine.ErrSinkUnavailable, err)
	}
	if err := sink.Start(p.produce); err != nil {
		sink.Close()
		return nil, fmt.Errorf("%w: %v", audioengine.ErrSinkUnavailable, err)
	}
	return sink, nil
}

func (p *Player) closeSink(s *session) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Close(); err != nil {
		p.log.Warn("close sink", "err", err)
	}
	s.sink = nil
}

// drain releases the sink, then the decoder. No callback can run once the sink is closed.
func (p *Player) drain(s *session) {
	p.closeSink(s)

	p.mu.Lock()
	dec := p.dec
	p.dec = nil
	p.mu.Unlock()

	if dec != nil {
		if err := dec.Close(); err != nil {
			p.log.Warn("close decoder", "err", err)
		}
	}
	p.vis.Reset()
}

// settle counts a track that failed before producing any frame. The counter is
// cleared only by a track that actually played, so a list that opens but cannot be
// read stops instead of cycling.
func (p *Player) settle(s *session) sessionState {
	p.mu.Lock()
	played, failed := p.played, p.readFailed
	p.played, p.readFailed = false, false
	count := p.cat.Len()
	p.mu.Unlock()

	switch {
	case played:
		s.failures = 0
	case failed:
		s.failures++
		if s.failures >= count {
			p.log.Warn("no track in the list could be played")
			return stateStopped
		}
	}
	return stateNextTrack
}

func (p *Player) advance() sessionState {
	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return stateStopped
	}
	req := catalog.Request{PlaySelected: p.newTrack, Next: p.next, Prev: p.prev, Skip: p.skip}
	p.newTrack, p.next, p.prev, p.skip = false, false, false, false
	_, ok := p.cat.Advance(req)
	p.mu.Unlock()

	if !ok {
		return stateStopped
	}
	return stateLoading
}

func (p *Player) finish() {
	p.mu.Lock()
	p.stopped = true
	p.finished = true
	p.paused = false
	p.pauseCond.Broadcast()
	p.mu.Unlock()
}

// produce is the sink callback. It fills out with frames of the current track and
// returns how many it wrote; the rest of out is silence.
func (p *Player) produce(out [][2]float64) int {
	p.mu.Lock()
	if p.changeParams || p.paused || p.finished || p.ended || p.trackRequestedLocked() {
		p.mu.Unlock()
		clear(out)
		p.signal()
		return 0
	}
	if p.dec == nil {
		p.mu.Unlock()
		clear(out)
		p.log.Debug("sink underrun: no decoder")
		return 0
	}

	gain := audioengine.Gain(p.volume, p.volumePower, p.muted)
	channels := p.track.Channels

	n := 0
	ended := false
	for n < len(out) {
		chunk := out[n:min(len(out), n+defaults.MaxChunkFrames)]
		got, err := p.dec.ReadFrames(chunk)
		n += got
		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.log.Warn("unreadable track", "path", p.track.Path, "err", err)
				p.skip = true
				p.readFailed = true
			}
			ended = true
			break
		}
		if got == 0 {
			ended = true
			break
		}
	}
	if n > 0 {
		p.played = true
	}
	p.pcmPos += uint64(n * channels)
	if p.pcmSize > 0 && p.pcmPos >= p.pcmSize {
		ended = true
	}
	p.ended = ended

	p.vis.Publish(out[:n], channels)
	audioengine.ApplyGain(out[:n], gain)
	p.mu.Unlock()

	clear(out[n:])
	if ended {
		p.signal()
	}
	return n
}
