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

	"github.com/gordonklaus/portaudio"

	"kmp/pkg/audioengine"
)

// PortAudio opens the default output device with a callback stream.
type PortAudio struct {
	Buffer time.Duration
}

func (p PortAudio) OpenSink(f audioengine.Format) (audioengine.Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: portaudio: %v", audioengine.ErrSinkUnavailable, err)
	}
	framesPerBuffer := 1024
	if p.Buffer > 0 {
		framesPerBuffer = max(64, int(float64(f.SampleRate)*p.Buffer.Seconds()/4))
	}
	return &portAudioSink{format: f, framesPerBuffer: framesPerBuffer}, nil
}

type portAudioSink struct {
	format          audioengine.Format
	framesPerBuffer int
	stream          *portaudio.Stream
	scratch         [][2]float64
	once            sync.Once
}

func (s *portAudioSink) Start(cb audioengine.Callback) error {
	s.scratch = make([][2]float64, s.framesPerBuffer)
	ch := s.format.Channels

	stream, err := portaudio.OpenDefaultStream(0, ch, float64(s.format.SampleRate), s.framesPerBuffer,
		func(out []float32) {
			frames := len(out) / ch
			if frames > len(s.scratch) {
				s.scratch = make([][2]float64, frames)
			}
			buf := s.scratch[:frames]
			cb(buf)
			for i, fr := range buf {
				for c := 0; c < ch; c++ {
					out[i*ch+c] = float32(fr[min(c, 1)])
				}
			}
		})
	if err != nil {
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return err
	}
	s.stream = stream
	return nil
}

func (s *portAudioSink) Close() error {
	var err error
	s.once.Do(func() {
		if s.stream != nil {
			s.stream.Stop()
			err = s.stream.Close()
		}
		portaudio.Terminate()
	})
	return err
}
