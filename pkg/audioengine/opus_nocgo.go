/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

//go:build !cgo

package audioengine

import "fmt"

func openOpus(path string) (Decoder, Format, error) {
	return nil, Format{}, fmt.Errorf("%w: opus needs a cgo build", ErrUnsupportedFormat)
}
