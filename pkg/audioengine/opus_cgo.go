/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

//go:build cgo

package audioengine

import (
	"os"

	"github.com/hraban/opus"
)

// opusSource adapts opus.Stream, which counts samples per channel, to sampleSource.
type opusSource struct {
	s        *opus.Stream
	f        *os.File
	channels int
}

func (o *opusSource) ReadSamples(dst []float32) (int, error) {
	n, err := o.s.ReadFloat32(dst)
	return n * o.channels, err
}

func (o *opusSource) Close() error {
	o.s.Close()
	return o.f.Close()
}

func openOpus(path string) (Decoder, Format, error) {
	channels, err := probeOpusChannels(path)
	if err != nil {
		return nil, Format{}, err
	}
	format := Format{SampleRate: opusRate, Channels: channels}

	d, err := newLinearDecoder(format.SampleRate, format.Channels, func() (sampleSource, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		s, err := opus.NewStream(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &opusSource{s: s, f: f, channels: channels}, nil
	})
	if err != nil {
		return nil, Format{}, err
	}
	return d, format, nil
}
