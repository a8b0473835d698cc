/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

//go:build !cgo

package sink

import (
	"fmt"
	"time"

	"kmp/pkg/audioengine"
)

type PortAudio struct {
	Buffer time.Duration
}

func (PortAudio) OpenSink(audioengine.Format) (audioengine.Sink, error) {
	return nil, fmt.Errorf("%w: portaudio needs a cgo build", audioengine.ErrSinkUnavailable)
}
