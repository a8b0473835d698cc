/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package audiotest holds fixtures shared by package tests: synthetic WAV files,
// an in-memory decoder and a sink that is pumped by hand.
package audiotest

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"kmp/pkg/audioengine"
)

// WriteWAV writes a 16-bit sine of the given length into dir and returns its path.
func WriteWAV(t testing.TB, dir, name string, rate, channels, frames int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           make([]int, frames*channels),
		SourceBitDepth: 16,
	}
	for i := 0; i < frames; i++ {
		v := int(math.Sin(2*math.Pi*440*float64(i)/float64(rate)) * 0.5 * math.MaxInt16)
		for c := 0; c < channels; c++ {
			buf.Data[i*channels+c] = v
		}
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder %s: %v", path, err)
	}
	return path
}

// Decoder serves a constant signal from memory.
type Decoder struct {
	Value  float64
	Total  int64
	pos    int64
	Closed bool
	// Err, when set, is returned by every read.
	Err error
}

func (d *Decoder) ReadFrames(dst [][2]float64) (int, error) {
	if d.Err != nil {
		return 0, d.Err
	}
	if d.pos >= d.Total {
		return 0, io.EOF
	}
	n := int(min(int64(len(dst)), d.Total-d.pos))
	for i := 0; i < n; i++ {
		dst[i] = [2]float64{d.Value, d.Value}
	}
	d.pos += int64(n)
	return n, nil
}

func (d *Decoder) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += d.pos
	case io.SeekEnd:
		offset += d.Total
	default:
		return d.pos, errors.New("bad whence")
	}
	d.pos = max(0, min(offset, d.Total))
	return d.pos, nil
}

func (d *Decoder) CurrentFrame() int64 { return d.pos }
func (d *Decoder) FramesTotal() uint64 { return uint64(d.Total) }
func (d *Decoder) Close() error        { d.Closed = true; return nil }

// Opener maps paths to fake tracks. Paths listed in Broken fail to open; paths in
// Unreadable open but fail on the first read.
type Opener struct {
	mu         sync.Mutex
	Rate       int
	Frames     int64
	Broken     map[string]bool
	Unreadable map[string]bool
	Opened     []string
}

// ErrRead is what decoders of Unreadable paths return.
var ErrRead = errors.New("read failed")

func (o *Opener) Open(path string) (audioengine.Decoder, audioengine.Track, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Opened = append(o.Opened, path)
	if o.Broken[path] {
		return nil, audioengine.Track{}, audioengine.ErrUnsupportedFormat
	}
	rate := o.Rate
	if rate == 0 {
		rate = 48000
	}
	t := audioengine.Track{Path: path, SampleRate: rate, Channels: 2, FrameCount: uint64(o.Frames)}
	t.Title = t.Name()
	d := &Decoder{Value: 1, Total: o.Frames}
	if o.Unreadable[path] {
		d.Err = ErrRead
	}
	return d, t, nil
}

// OpenedPaths returns a copy of the paths passed to Open so far.
func (o *Opener) OpenedPaths() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.Opened...)
}

// Sink records formats and hands the callback to the test, which drives it with Pull.
type Sink struct {
	call    sync.Mutex
	mu      sync.Mutex
	cb      audioengine.Callback
	Formats []audioengine.Format
	Opens   int
	Closes  int
	Fail    bool
}

func (s *Sink) OpenSink(f audioengine.Format) (audioengine.Sink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return nil, audioengine.ErrSinkUnavailable
	}
	s.Opens++
	s.Formats = append(s.Formats, f)
	return &sinkHandle{parent: s}, nil
}

// Pull invokes the active callback once with a buffer of n frames. It reports false
// when no sink is started.
func (s *Sink) Pull(n int) ([][2]float64, int, bool) {
	s.call.Lock()
	defer s.call.Unlock()
	s.mu.Lock()
	cb := s.cb
	s.mu.Unlock()
	if cb == nil {
		return nil, 0, false
	}
	out := make([][2]float64, n)
	return out, cb(out), true
}

// Active reports whether a sink is open and started.
func (s *Sink) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cb != nil
}

// LastFormat returns the format of the most recent open.
func (s *Sink) LastFormat() audioengine.Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Formats) == 0 {
		return audioengine.Format{}
	}
	return s.Formats[len(s.Formats)-1]
}

type sinkHandle struct {
	parent *Sink
}

func (h *sinkHandle) Start(cb audioengine.Callback) error {
	h.parent.mu.Lock()
	h.parent.cb = cb
	h.parent.mu.Unlock()
	return nil
}

func (h *sinkHandle) Close() error {
	h.parent.call.Lock()
	defer h.parent.call.Unlock()
	h.parent.mu.Lock()
	h.parent.cb = nil
	h.parent.Closes++
	h.parent.mu.Unlock()
	return nil
}
