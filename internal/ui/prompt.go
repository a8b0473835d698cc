/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package ui

import "time"

type PromptResult int

const (
	PromptEditing PromptResult = iota
	PromptAccepted
	PromptCancelled
)

// Prompt is the one-line editor on the bottom row used for search, seek and jump.
type Prompt struct {
	Label   string
	Max     int
	Timeout time.Duration

	buf      []rune
	deadline time.Time
}

func NewPrompt(label string, maxLen int, timeout time.Duration, now time.Time) *Prompt {
	p := &Prompt{Label: label, Max: maxLen, Timeout: timeout}
	p.touch(now)
	return p
}

func (p *Prompt) touch(now time.Time) {
	if p.Timeout > 0 {
		p.deadline = now.Add(p.Timeout)
	}
}

// Feed applies one key. Every key pushes the timeout back.
func (p *Prompt) Feed(k Key, now time.Time) PromptResult {
	p.touch(now)
	switch k.Code {
	case KeyEnter:
		return PromptAccepted
	case KeyEsc:
		p.buf = p.buf[:0]
		return PromptCancelled
	case KeyBackspace:
		if len(p.buf) > 0 {
			p.buf = p.buf[:len(p.buf)-1]
		}
	case KeyCtrl:
		if k.Rune == 'w' {
			p.buf = p.buf[:0]
		}
	case KeyRune:
		if p.Max <= 0 || len(p.buf) < p.Max {
			p.buf = append(p.buf, k.Rune)
		}
	}
	return PromptEditing
}

// Expired reports whether the prompt sat idle past its timeout.
func (p *Prompt) Expired(now time.Time) bool {
	return !p.deadline.IsZero() && now.After(p.deadline)
}

func (p *Prompt) Value() string { return string(p.buf) }

func (p *Prompt) Line() string { return p.Label + string(p.buf) }
