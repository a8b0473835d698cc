/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package ui

import "unicode/utf8"

type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyCtrl         // Rune holds the lower-case letter
	KeyEnter
	KeyEsc
	KeyBackspace
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDn
)

type Key struct {
	Code KeyCode
	Rune rune
}

func Rune(r rune) Key { return Key{Code: KeyRune, Rune: r} }
func Ctrl(r rune) Key { return Key{Code: KeyCtrl, Rune: r} }

// DecodeKeys splits one read from a raw terminal into keys. A lone ESC at the end of
// the buffer is the Escape key; the terminal sends escape sequences in one write.
func DecodeKeys(b []byte) []Key {
	var keys []Key
	for len(b) > 0 {
		k, n := decodeOne(b)
		if n == 0 {
			break
		}
		if k != nil {
			keys = append(keys, *k)
		}
		b = b[n:]
	}
	return keys
}

func decodeOne(b []byte) (*Key, int) {
	c := b[0]
	switch {
	case c == 0x1b:
		return decodeEscape(b)
	case c == '\r' || c == '\n':
		return &Key{Code: KeyEnter}, 1
	case c == 0x7f || c == 0x08:
		return &Key{Code: KeyBackspace}, 1
	case c == '\t':
		return &Key{Code: KeyTab}, 1
	case c >= 1 && c <= 26:
		k := Ctrl(rune('a' + c - 1))
		return &k, 1
	case c < 0x20:
		return nil, 1
	}
	r, n := utf8.DecodeRune(b)
	if r == utf8.RuneError {
		return nil, n
	}
	k := Rune(r)
	return &k, n
}

func decodeEscape(b []byte) (*Key, int) {
	if len(b) == 1 || (b[1] != '[' && b[1] != 'O') {
		return &Key{Code: KeyEsc}, 1
	}

	// ESC [ params final  or  ESC O final
	i := 2
	for i < len(b) && (b[i] < 0x40 || b[i] > 0x7e) {
		i++
	}
	if i == len(b) {
		return nil, len(b)
	}
	params, final := string(b[2:i]), b[i]
	n := i + 1

	code := KeyCode(-1)
	switch final {
	case 'A':
		code = KeyUp
	case 'B':
		code = KeyDown
	case 'C':
		code = KeyRight
	case 'D':
		code = KeyLeft
	case 'H':
		code = KeyHome
	case 'F':
		code = KeyEnd
	case '~':
		switch params {
		case "1", "7":
			code = KeyHome
		case "4", "8":
			code = KeyEnd
		case "5":
			code = KeyPgUp
		case "6":
			code = KeyPgDn
		}
	}
	if code < 0 {
		return nil, n
	}
	return &Key{Code: code}, n
}
