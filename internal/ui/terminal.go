/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

var ErrNoTerminal = errors.New("no terminal available")

// Terminal is the raw-mode TTY the UI draws on. When stdin carries the track list it
// reads keys from /dev/tty instead.
type Terminal struct {
	in    *os.File
	out   *os.File
	owned bool
	state *term.State
}

func OpenTerminal() (*Terminal, error) {
	t := &Terminal{in: os.Stdin, out: os.Stdout}
	if !term.IsTerminal(int(t.in.Fd())) {
		f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoTerminal, err)
		}
		t.in, t.owned = f, true
	}
	if !term.IsTerminal(int(t.out.Fd())) {
		t.Close()
		return nil, ErrNoTerminal
	}

	st, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		t.Close()
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	t.state = st
	// alternate screen, hidden cursor
	io.WriteString(t.out, "\x1b[?1049h\x1b[?25l\x1b[2J")
	return t, nil
}

func (t *Terminal) Out() io.Writer { return t.out }

func (t *Terminal) Size() (int, int) {
	w, h, err := term.GetSize(int(t.out.Fd()))
	if err != nil {
		return 80, 24
	}
	return w, h
}

// Keys decodes input until ctx ends or the terminal is closed. The reader goroutine
// stays blocked in Read until the next key or Close.
func (t *Terminal) Keys(ctx context.Context) <-chan Key {
	ch := make(chan Key, 16)
	go func() {
		defer close(ch)
		buf := make([]byte, 64)
		for {
			n, err := t.in.Read(buf)
			if err != nil {
				return
			}
			for _, k := range DecodeKeys(buf[:n]) {
				select {
				case ch <- k:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch
}

func (t *Terminal) Close() error {
	if t.state != nil {
		io.WriteString(t.out, "\x1b[?25h\x1b[?1049l")
		term.Restore(int(t.in.Fd()), t.state)
		t.state = nil
	}
	if t.owned {
		return t.in.Close()
	}
	return nil
}
