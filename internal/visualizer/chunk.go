/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package visualizer turns the most recent block of played audio into bar heights.
package visualizer

import "sync/atomic"

// Chunk is one callback's worth of decoded samples, interleaved. A published chunk
// is never written again.
type Chunk struct {
	Samples  []float64
	Frames   int
	Channels int
}

// Publisher hands chunks from the audio callback to the renderer. Publish and
// Latest may run on different goroutines.
type Publisher struct {
	latest atomic.Pointer[Chunk]
}

// Publish copies frames into a fresh chunk and makes it the latest one.
func (p *Publisher) Publish(frames [][2]float64, channels int) {
	if channels < 1 {
		channels = 1
	}
	c := &Chunk{
		Samples:  make([]float64, len(frames)*channels),
		Frames:   len(frames),
		Channels: channels,
	}
	for i, f := range frames {
		for ch := 0; ch < channels; ch++ {
			c.Samples[i*channels+ch] = f[min(ch, 1)]
		}
	}
	p.latest.Store(c)
}

// Latest returns the last published chunk, or nil before the first one.
func (p *Publisher) Latest() *Chunk {
	return p.latest.Load()
}

// Reset drops the current chunk so a stopped player shows flat bars.
func (p *Publisher) Reset() {
	p.latest.Store(nil)
}
