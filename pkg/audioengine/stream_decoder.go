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
	"os"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// beepDecodeFunc matches the Decode functions of the beep format packages.
type beepDecodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

func beepWAV(f *os.File) (beep.StreamSeekCloser, beep.Format, error)    { return wav.Decode(f) }
func beepMP3(f *os.File) (beep.StreamSeekCloser, beep.Format, error)    { return mp3.Decode(f) }
func beepVorbis(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) }
func beepFLAC(f *os.File) (beep.StreamSeekCloser, beep.Format, error)   { return flac.Decode(f) }

// StreamDecoder adapts a beep.StreamSeekCloser to Decoder.
type StreamDecoder struct {
	s      beep.StreamSeekCloser
	format beep.Format
	file   io.Closer
}

func openBeep(path string, decode beepDecodeFunc) (*StreamDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s, format, err := decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &StreamDecoder{s: s, format: format, file: f}, nil
}

func (d *StreamDecoder) Format() Format {
	return Format{SampleRate: int(d.format.SampleRate), Channels: d.format.NumChannels}
}

func (d *StreamDecoder) ReadFrames(dst [][2]float64) (int, error) {
	n, ok := d.s.Stream(dst)
	if !ok {
		if err := d.s.Err(); err != nil {
			return n, err
		}
		return n, io.EOF
	}
	return n, nil
}

func (d *StreamDecoder) Seek(offset int64, whence int) (int64, error) {
	target, err := seekTarget(offset, whence, int64(d.s.Position()), int64(d.s.Len()))
	if err != nil {
		return int64(d.s.Position()), err
	}
	if err := d.s.Seek(int(target)); err != nil {
		return int64(d.s.Position()), fmt.Errorf("%w: %v", ErrSeekUnsupported, err)
	}
	return int64(d.s.Position()), nil
}

func (d *StreamDecoder) CurrentFrame() int64 { return int64(d.s.Position()) }

func (d *StreamDecoder) FramesTotal() uint64 { return uint64(d.s.Len()) }

func (d *StreamDecoder) Close() error {
	err := d.s.Close()
	// Most beep decoders close the file themselves.
	if cerr := d.file.Close(); err == nil && !errors.Is(cerr, os.ErrClosed) {
		err = cerr
	}
	return err
}

// seekTarget resolves an io.Seeker style request and clamps it to [0, total].
func seekTarget(offset int64, whence int, current, total int64) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = current + offset
	case io.SeekEnd:
		target = total + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if target < 0 {
		target = 0
	}
	if target > total {
		target = total
	}
	return target, nil
}
