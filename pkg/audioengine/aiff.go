/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"os"

	"github.com/ik5/audpbx/audio"
	"github.com/ik5/audpbx/formats/aiff"
)

// fileSource closes the file together with the decoded source.
type fileSource struct {
	audio.Source
	f *os.File
}

func (s fileSource) Close() error {
	s.Source.Close()
	return s.f.Close()
}

func openAIFFSource(path string) (audio.Source, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	src, err := aiff.Decoder{}.Decode(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return src, f, nil
}

func openAIFF(path string) (Decoder, Format, error) {
	probe, f, err := openAIFFSource(path)
	if err != nil {
		return nil, Format{}, err
	}
	format := Format{SampleRate: probe.SampleRate(), Channels: probe.Channels()}
	f.Close()

	d, err := newLinearDecoder(format.SampleRate, format.Channels, func() (sampleSource, error) {
		src, f, err := openAIFFSource(path)
		if err != nil {
			return nil, err
		}
		return fileSource{Source: src, f: f}, nil
	})
	if err != nil {
		return nil, Format{}, err
	}
	return d, format, nil
}
