/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// readTags fills the descriptive fields of t. Files without tags keep their file name as title.
func readTags(t *Track) {
	t.Title = t.Name()

	f, err := os.Open(t.Path)
	if err != nil {
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return
	}
	if s := strings.TrimSpace(m.Title()); s != "" {
		t.Title = s
	}
	t.Artist = strings.TrimSpace(m.Artist())
	t.Album = strings.TrimSpace(m.Album())
}
