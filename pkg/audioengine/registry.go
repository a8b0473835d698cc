/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OpenFunc opens one container format.
type OpenFunc func(path string) (Decoder, Format, error)

// Registry picks a decoder by file extension.
type Registry struct {
	formats  map[string]OpenFunc
	withTags bool
}

func beepOpener(decode beepDecodeFunc) OpenFunc {
	return func(path string) (Decoder, Format, error) {
		d, err := openBeep(path, decode)
		if err != nil {
			return nil, Format{}, err
		}
		return d, d.Format(), nil
	}
}

// NewRegistry returns a registry with every built-in format.
func NewRegistry() *Registry {
	r := &Registry{formats: map[string]OpenFunc{}, withTags: true}
	r.Register(".wav", beepOpener(beepWAV))
	r.Register(".mp3", beepOpener(beepMP3))
	r.Register(".ogg", beepOpener(beepVorbis))
	r.Register(".flac", beepOpener(beepFLAC))
	r.Register(".opus", openOpus)
	r.Register(".aif", openAIFF)
	r.Register(".aiff", openAIFF)
	return r
}

// Register binds ext (with leading dot, any case) to open.
func (r *Registry) Register(ext string, open OpenFunc) {
	r.formats[strings.ToLower(ext)] = open
}

// SkipTags disables tag reading, mostly for tests over synthetic files.
func (r *Registry) SkipTags() { r.withTags = false }

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.formats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Open implements Opener.
func (r *Registry) Open(path string) (Decoder, Track, error) {
	open, ok := r.formats[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, Track{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	d, format, err := open(path)
	if err != nil {
		return nil, Track{}, err
	}
	if format.SampleRate <= 0 || format.Channels <= 0 {
		d.Close()
		return nil, Track{}, fmt.Errorf("%w: %s reports %d Hz, %d channels", ErrUnsupportedFormat, path, format.SampleRate, format.Channels)
	}

	t := Track{
		Path:       path,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		FrameCount: d.FramesTotal(),
	}
	if r.withTags {
		readTags(&t)
	} else {
		t.Title = t.Name()
	}
	return d, t, nil
}
