/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNoPlayableTracks(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)

	var stderr bytes.Buffer
	inv := invocation{
		Files:   []string{filepath.Join(dir, "notes.txt"), filepath.Join(dir, "cover.jpg")},
		EnvFile: filepath.Join(dir, "missing.env"),
	}
	if code := run(inv, os.Stdin, &stderr); code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if got := stderr.String(); !strings.Contains(got, "kmp: no playable tracks") {
		t.Fatalf("stderr = %q", got)
	}
}

func TestBadOverrideIsReported(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	var stderr bytes.Buffer
	inv := invocation{
		Files:     []string{"a.flac"},
		Overrides: map[string]string{"REPEAT": "sometimes"},
	}
	if code := run(inv, os.Stdin, &stderr); code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if got := stderr.String(); !strings.Contains(got, "REPEAT") {
		t.Fatalf("stderr = %q", got)
	}
}
