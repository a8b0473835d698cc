/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package search finds list entries by case-insensitive substring.
package search

import "strings"

type Direction int

const (
	Forward Direction = iota
	Backward
)

// Opposite flips the direction, used by the "previous match" key.
func (d Direction) Opposite() Direction {
	if d == Forward {
		return Backward
	}
	return Forward
}

// Find returns the indices of names containing query, in scan order. A backward scan
// starts at the last name, so its first match is the last one in the list.
func Find(names []string, query string, dir Direction) []int {
	if query == "" {
		return nil
	}
	q := strings.ToLower(query)
	var matches []int
	check := func(i int) {
		if strings.Contains(strings.ToLower(names[i]), q) {
			matches = append(matches, i)
		}
	}
	if dir == Backward {
		for i := len(names) - 1; i >= 0; i-- {
			check(i)
		}
	} else {
		for i := range names {
			check(i)
		}
	}
	return matches
}

// State remembers the last search so the user can walk its matches.
type State struct {
	Query   string
	Matches []int
	Cursor  int
}

// Search replaces the state with a new query and returns the first match.
func (s *State) Search(names []string, query string, dir Direction) (int, bool) {
	*s = State{Query: query, Matches: Find(names, query, dir)}
	if len(s.Matches) == 0 {
		return 0, false
	}
	return s.Matches[0], true
}

// Jump moves the cursor one match forward (in scan order) or backward, wrapping.
func (s *State) Jump(dir Direction) (int, bool) {
	n := len(s.Matches)
	if n == 0 {
		return 0, false
	}
	if dir == Forward {
		s.Cursor = (s.Cursor + 1) % n
	} else {
		s.Cursor = (s.Cursor - 1 + n) % n
	}
	return s.Matches[s.Cursor], true
}

// Position is the 1-based cursor for display, zero when nothing matched.
func (s *State) Position() int {
	if len(s.Matches) == 0 {
		return 0
	}
	return s.Cursor + 1
}
