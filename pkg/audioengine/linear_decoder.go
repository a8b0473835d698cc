/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"errors"
	"fmt"
	"io"
)

// sampleSource yields interleaved float32 samples. It matches audpbx's audio.Source.
type sampleSource interface {
	ReadSamples(dst []float32) (int, error)
	Close() error
}

// linearDecoder turns a forward-only sample source into a Decoder. Seeking backwards
// reopens the source and skips ahead; the total length is measured once at open.
type linearDecoder struct {
	reopen   func() (sampleSource, error)
	src      sampleSource
	channels int
	rate     int
	total    uint64
	pos      int64
	eof      bool
	scratch  []float32
	carry    int // samples of a split frame kept at the front of scratch
	pending  [][2]float64
}

func newLinearDecoder(rate, channels int, reopen func() (sampleSource, error)) (*linearDecoder, error) {
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}
	d := &linearDecoder{
		reopen:   reopen,
		channels: channels,
		rate:     rate,
		scratch:  make([]float32, 5760*channels),
	}

	total, err := d.measure()
	if err != nil {
		return nil, err
	}
	d.total = total

	if d.src, err = reopen(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *linearDecoder) measure() (uint64, error) {
	src, err := d.reopen()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	var samples uint64
	for {
		n, err := src.ReadSamples(d.scratch)
		samples += uint64(n)
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	return samples / uint64(d.channels), nil
}

// fill decodes one block into pending.
func (d *linearDecoder) fill() error {
	n, err := d.src.ReadSamples(d.scratch[d.carry:])
	total := d.carry + n
	frames := total / d.channels
	for i := 0; i < frames; i++ {
		l := float64(d.scratch[i*d.channels])
		r := l
		if d.channels == 2 {
			r = float64(d.scratch[i*2+1])
		}
		d.pending = append(d.pending, [2]float64{l, r})
	}
	d.carry = copy(d.scratch, d.scratch[frames*d.channels:total])
	if errors.Is(err, io.EOF) || (err == nil && n == 0) {
		d.eof = true
		return nil
	}
	return err
}

func (d *linearDecoder) ReadFrames(dst [][2]float64) (int, error) {
	filled := 0
	for filled < len(dst) {
		if len(d.pending) == 0 {
			if d.eof {
				break
			}
			if err := d.fill(); err != nil {
				return filled, err
			}
			continue
		}
		n := copy(dst[filled:], d.pending)
		d.pending = d.pending[n:]
		filled += n
	}
	d.pos += int64(filled)
	if filled == 0 && d.eof {
		return 0, io.EOF
	}
	return filled, nil
}

func (d *linearDecoder) Seek(offset int64, whence int) (int64, error) {
	target, err := seekTarget(offset, whence, d.pos, int64(d.total))
	if err != nil {
		return d.pos, err
	}
	if target < d.pos {
		src, err := d.reopen()
		if err != nil {
			return d.pos, err
		}
		d.src.Close()
		d.src, d.pos, d.eof, d.carry, d.pending = src, 0, false, 0, d.pending[:0]
	}

	skip := make([][2]float64, 1024)
	for d.pos < target {
		want := min(int64(len(skip)), target-d.pos)
		n, err := d.ReadFrames(skip[:want])
		if err != nil || n == 0 {
			break
		}
	}
	return d.pos, nil
}

func (d *linearDecoder) CurrentFrame() int64 { return d.pos }

func (d *linearDecoder) FramesTotal() uint64 { return d.total }

func (d *linearDecoder) Close() error { return d.src.Close() }
