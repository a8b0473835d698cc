/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package sink provides the audio outputs the player can stream into.
package sink

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"kmp/pkg/audioengine"
)

type Kind string

const (
	KindSpeaker   Kind = "speaker"
	KindPortAudio Kind = "portaudio"
	KindNull      Kind = "null"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSpeaker, KindPortAudio, KindNull:
		return k, nil
	}
	return KindSpeaker, fmt.Errorf("unknown sink %q", s)
}

// New returns the opener for kind. buffer is the device latency hint.
func New(kind Kind, buffer time.Duration) audioengine.SinkOpener {
	switch kind {
	case KindPortAudio:
		return PortAudio{Buffer: buffer}
	case KindNull:
		return Null{}
	}
	return Speaker{Buffer: buffer}
}

// Null consumes frames in real time and discards them. It needs no device.
type Null struct {
	// Block is the callback period; zero means 20ms.
	Block time.Duration
}

func (n Null) OpenSink(f audioengine.Format) (audioengine.Sink, error) {
	if f.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", audioengine.ErrSinkUnavailable, f.SampleRate)
	}
	block := n.Block
	if block <= 0 {
		block = 20 * time.Millisecond
	}
	frames := max(1, int(float64(f.SampleRate)*block.Seconds()))
	return &nullSink{period: block, buf: make([][2]float64, frames), quit: make(chan struct{})}, nil
}

type nullSink struct {
	period time.Duration
	buf    [][2]float64
	quit   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func (s *nullSink) Start(cb audioengine.Callback) error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(s.period)
		defer t.Stop()
		for {
			select {
			case <-s.quit:
				return
			case <-t.C:
				cb(s.buf)
			}
		}
	}()
	return nil
}

func (s *nullSink) Close() error {
	s.once.Do(func() { close(s.quit) })
	s.wg.Wait()
	return nil
}
