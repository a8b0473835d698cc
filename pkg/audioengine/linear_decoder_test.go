/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"errors"
	"io"
	"testing"
)

// rampSource yields sample i as float32(i) for values 0..n-1.
type rampSource struct {
	n, pos int
	block  int
}

func (r *rampSource) ReadSamples(dst []float32) (int, error) {
	if r.pos >= r.n {
		return 0, io.EOF
	}
	k := min(len(dst), r.block, r.n-r.pos)
	for i := 0; i < k; i++ {
		dst[i] = float32(r.pos + i)
	}
	r.pos += k
	return k, nil
}

func (r *rampSource) Close() error { return nil }

func newRamp(t *testing.T, frames, channels int) (*linearDecoder, *int) {
	t.Helper()
	opens := 0
	d, err := newLinearDecoder(48000, channels, func() (sampleSource, error) {
		opens++
		return &rampSource{n: frames * channels, block: 333}, nil
	})
	if err != nil {
		t.Fatalf("newLinearDecoder: %v", err)
	}
	return d, &opens
}

func TestLinearDecoderMeasuresAndReads(t *testing.T) {
	d, _ := newRamp(t, 1000, 2)
	if d.FramesTotal() != 1000 {
		t.Fatalf("FramesTotal = %d, want 1000", d.FramesTotal())
	}

	buf := make([][2]float64, 400)
	n, err := d.ReadFrames(buf)
	if err != nil || n != 400 {
		t.Fatalf("ReadFrames = %d, %v", n, err)
	}
	if buf[10] != [2]float64{20, 21} {
		t.Errorf("frame 10 = %v, want [20 21]", buf[10])
	}

	total := n
	for {
		n, err := d.ReadFrames(buf)
		total += n
		if errors.Is(err, io.EOF) {
			break
		}
	}
	if total != 1000 {
		t.Errorf("read %d frames, want 1000", total)
	}
}

func TestLinearDecoderKeepsChannelsAcrossOddBlocks(t *testing.T) {
	d, _ := newRamp(t, 1000, 2) // 333-sample blocks split frames
	buf := make([][2]float64, 1000)
	got := 0
	for got < len(buf) {
		n, err := d.ReadFrames(buf[got:])
		got += n
		if err != nil {
			break
		}
	}
	if got != 1000 {
		t.Fatalf("read %d frames, want 1000", got)
	}
	for i, f := range buf {
		if want := [2]float64{float64(2 * i), float64(2*i + 1)}; f != want {
			t.Fatalf("frame %d = %v, want %v", i, f, want)
		}
	}
}

func TestLinearDecoderMonoDuplicates(t *testing.T) {
	d, _ := newRamp(t, 10, 1)
	buf := make([][2]float64, 4)
	d.ReadFrames(buf)
	if buf[3] != [2]float64{3, 3} {
		t.Errorf("frame 3 = %v, want [3 3]", buf[3])
	}
}

func TestLinearDecoderSeekBackReopens(t *testing.T) {
	d, opens := newRamp(t, 1000, 2)
	before := *opens

	if pos, _ := d.Seek(600, io.SeekStart); pos != 600 {
		t.Fatalf("Seek forward = %d, want 600", pos)
	}
	if *opens != before {
		t.Errorf("forward seek reopened the source")
	}
	if pos, _ := d.Seek(100, io.SeekStart); pos != 100 {
		t.Fatalf("Seek back = %d, want 100", pos)
	}
	if *opens != before+1 {
		t.Errorf("opens = %d, want %d", *opens, before+1)
	}

	buf := make([][2]float64, 1)
	d.ReadFrames(buf)
	if buf[0] != [2]float64{200, 201} {
		t.Errorf("frame after seek = %v, want [200 201]", buf[0])
	}
}

func TestParseOpusHead(t *testing.T) {
	head := append([]byte("OggS...."), []byte("OpusHead\x01\x02\x38\x01")...)
	ch, err := parseOpusHead(head)
	if err != nil || ch != 2 {
		t.Errorf("parseOpusHead = %d, %v, want 2", ch, err)
	}
	if _, err := parseOpusHead([]byte("OggS")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("parseOpusHead(no head) error = %v", err)
	}
}
