/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

//go:build cgo

package sink

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"kmp/pkg/audioengine"
	"kmp/pkg/defaults"
)

// Speaker plays through beep's speaker. The speaker is process wide, so only one
// sink may be open at a time; the player never holds two.
type Speaker struct {
	Buffer time.Duration
}

func (s Speaker) OpenSink(f audioengine.Format) (audioengine.Sink, error) {
	buffer := s.Buffer
	if buffer <= 0 {
		buffer = defaults.SinkBuffer
	}
	sr := beep.SampleRate(f.SampleRate)
	if err := speaker.Init(sr, sr.N(buffer)); err != nil {
		return nil, fmt.Errorf("%w: speaker init: %v", audioengine.ErrSinkUnavailable, err)
	}
	return &speakerSink{}, nil
}

type speakerSink struct {
	once sync.Once
}

func (s *speakerSink) Start(cb audioengine.Callback) error {
	speaker.Play(beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		cb(samples)
		return len(samples), true
	}))
	return nil
}

func (s *speakerSink) Close() error {
	s.once.Do(func() {
		speaker.Clear()
		speaker.Close()
	})
	return nil
}
