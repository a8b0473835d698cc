/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package audioengine defines the contracts between the playback core and its
// collaborators: decoders that turn files into frames and sinks that pull frames
// out through a callback.
package audioengine

import (
	"errors"
	"path/filepath"
	"time"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrSinkUnavailable   = errors.New("audio sink unavailable")
	ErrSeekUnsupported   = errors.New("seek not supported")
)

// Format describes PCM as the sink sees it.
type Format struct {
	SampleRate int
	Channels   int
}

// Track is the metadata of an opened file. It does not change while the file is open.
type Track struct {
	Path       string
	Title      string
	Artist     string
	Album      string
	SampleRate int
	Channels   int
	FrameCount uint64
}

// Name returns the file name without directories.
func (t Track) Name() string {
	return filepath.Base(t.Path)
}

// Duration is the playing time at the native sample rate.
func (t Track) Duration() time.Duration {
	if t.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(t.FrameCount) / float64(t.SampleRate) * float64(time.Second))
}

// Decoder produces stereo frames. Mono sources duplicate their channel.
// Offsets are expressed in frames.
type Decoder interface {
	// ReadFrames fills dst and returns the number of frames written.
	// io.EOF is returned once the source is exhausted.
	ReadFrames(dst [][2]float64) (int, error)
	// Seek moves the read position like io.Seeker and returns the new frame offset.
	Seek(offset int64, whence int) (int64, error)
	CurrentFrame() int64
	FramesTotal() uint64
	Close() error
}

// Opener opens a path into a Decoder and reports its metadata.
type Opener interface {
	Open(path string) (Decoder, Track, error)
}

// Callback is invoked by a sink whenever it needs frames. It returns how many frames
// it wrote; the sink plays silence for the rest of out.
type Callback func(out [][2]float64) int

// Sink is one open instance of an audio output.
type Sink interface {
	// Start begins pulling frames through cb. It must not block.
	Start(cb Callback) error
	// Close stops the callbacks and releases the device. No callback runs after
	// Close returns.
	Close() error
}

// SinkOpener opens a sink for a given format.
type SinkOpener interface {
	OpenSink(f Format) (Sink, error)
}
