/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package catalog

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// Load builds the list from args, or from newline separated paths on stdin when args
// is empty. Paths whose extension is not in supported are dropped silently.
func Load(args []string, stdin io.Reader, supported []string) (*Catalog, error) {
	paths := args
	if len(paths) == 0 && stdin != nil {
		var err error
		if paths, err = readLines(stdin); err != nil {
			return nil, err
		}
	}
	return New(Filter(paths, supported))
}

// Filter keeps the paths with a supported extension, in order.
func Filter(paths, supported []string) []string {
	return lo.Filter(paths, func(p string, _ int) bool {
		return p != "" && lo.Contains(supported, strings.ToLower(filepath.Ext(p)))
	})
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
