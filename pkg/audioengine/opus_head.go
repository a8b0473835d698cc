/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// libopusfile always decodes at 48 kHz.
const opusRate = 48000

// probeOpusChannels reads the channel count from the OpusHead packet in the first Ogg page.
func probeOpusChannels(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, err
	}
	return parseOpusHead(head[:n])
}

func parseOpusHead(b []byte) (int, error) {
	i := bytes.Index(b, []byte("OpusHead"))
	if i < 0 || i+9 >= len(b) {
		return 0, fmt.Errorf("%w: missing OpusHead", ErrUnsupportedFormat)
	}
	ch := int(b[i+9])
	if ch < 1 || ch > 2 {
		return 0, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, ch)
	}
	return ch, nil
}
