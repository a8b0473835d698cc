/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package sink

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"kmp/pkg/audioengine"
)

func TestNullSinkPullsUntilClosed(t *testing.T) {
	s, err := Null{Block: time.Millisecond}.OpenSink(audioengine.Format{SampleRate: 48000, Channels: 2})
	if err != nil {
		t.Fatalf("OpenSink: %v", err)
	}

	var calls, frames atomic.Int64
	s.Start(func(out [][2]float64) int {
		calls.Add(1)
		frames.Store(int64(len(out)))
		return len(out)
	})

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("callback was not invoked")
		}
		time.Sleep(time.Millisecond)
	}
	s.Close()
	after := calls.Load()
	time.Sleep(10 * time.Millisecond)
	if calls.Load() != after {
		t.Error("callback ran after Close returned")
	}
	if frames.Load() != 48 {
		t.Errorf("block = %d frames, want 48", frames.Load())
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestNullSinkRejectsZeroRate(t *testing.T) {
	_, err := Null{}.OpenSink(audioengine.Format{})
	if !errors.Is(err, audioengine.ErrSinkUnavailable) {
		t.Errorf("err = %v, want ErrSinkUnavailable", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"speaker", KindSpeaker, true},
		{"PortAudio", KindPortAudio, true},
		{" null ", KindNull, true},
		{"alsa", KindSpeaker, false},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if got != tt.want || (err == nil) != tt.ok {
			t.Errorf("ParseKind(%q) = %q, %v", tt.in, got, err)
		}
	}
}
