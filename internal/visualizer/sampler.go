/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package visualizer

import (
	"fmt"
	"math"
	"strings"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

type Mode int

const (
	// FFT draws frequency bars.
	FFT Mode = iota
	// Peak draws level bars from the sample amplitude.
	Peak
)

func (m Mode) String() string {
	if m == Peak {
		return "peak"
	}
	return "fft"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fft", "spectrum":
		return FFT, nil
	case "peak", "level":
		return Peak, nil
	}
	return FFT, fmt.Errorf("unknown visualizer mode %q", s)
}

// Sampler computes bar heights. Scalar boosts the normalised magnitudes before
// rounding to rows.
type Sampler struct {
	Mode   Mode
	Scalar float64
}

// Bars returns count heights in [0, height]. A nil chunk gives all zeros.
func (s Sampler) Bars(c *Chunk, count, height int) []int {
	if count <= 0 {
		return nil
	}
	bars := make([]int, count)
	if c == nil || c.Frames == 0 || height <= 0 {
		return bars
	}

	var levels []float64
	if s.Mode == Peak {
		levels = peakLevels(c, count)
	} else {
		levels = spectrumLevels(c, count)
	}
	for i, l := range levels {
		h := int(math.Round(l * s.Scalar))
		bars[i] = max(0, min(h, height))
	}
	return bars
}

// firstChannel extracts channel 0 of the chunk.
func firstChannel(c *Chunk) []float64 {
	mono := make([]float64, c.Frames)
	for i := range mono {
		mono[i] = c.Samples[i*c.Channels]
	}
	return mono
}

// spectrumLevels runs a Hann-windowed FFT over the first channel, drops the DC bin,
// normalises by the loudest bin and gives each bar the peak of a run of low bins.
// Only the bottom sixth of the spectrum is shown.
func spectrumLevels(c *Chunk, count int) []float64 {
	mono := firstChannel(c)
	for i, w := range window.Hann(len(mono)) {
		mono[i] *= w
	}
	coeffs := fft.FFTReal(mono)

	half := len(coeffs) / 2
	if half == 0 {
		return make([]float64, count)
	}
	mags := make([]float64, half)
	var peak float64
	for i := 1; i < half; i++ {
		mags[i] = math.Hypot(real(coeffs[i]), imag(coeffs[i]))
		peak = max(peak, mags[i])
	}

	levels := make([]float64, count)
	if peak == 0 {
		return levels
	}
	perBar := int(math.Ceil(float64(c.Frames) / float64(count) / 6))
	perBar = max(perBar, 1)

	pos := 0
	for i := range levels {
		for j := 0; j < perBar && pos < half; j++ {
			levels[i] = max(levels[i], mags[pos]/peak)
			pos++
		}
	}
	return levels
}

// peakLevels splits the first channel into count buckets and takes the absolute peak
// of each.
func peakLevels(c *Chunk, count int) []float64 {
	mono := firstChannel(c)
	levels := make([]float64, count)
	step := float64(len(mono)) / float64(count)
	for i := range levels {
		start := int(float64(i) * step)
		end := max(int(float64(i+1)*step), start+1)
		for j := start; j < end && j < len(mono); j++ {
			levels[i] = max(levels[i], math.Abs(mono[j]))
		}
	}
	return levels
}
