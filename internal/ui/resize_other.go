/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

//go:build !unix

package ui

import "os"

// ResizeEvents has no signal to watch here; C-l still redraws.
func ResizeEvents() (<-chan os.Signal, func()) {
	return nil, func() {}
}
