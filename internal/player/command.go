/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package player

import (
	"kmp/internal/catalog"
	"kmp/internal/search"
)

// SetVolume clamps v to the configured range.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	p.volume = p.clampVolume(v)
	p.mu.Unlock()

	p.emit(EventVolume)
}

func (p *Player) AddVolume(delta float64) {
	p.mu.Lock()
	p.volume = p.clampVolume(p.volume + delta)
	p.mu.Unlock()

	p.emit(EventVolume)
}

func (p *Player) ToggleMute() {
	p.mu.Lock()
	p.muted = !p.muted
	p.mu.Unlock()

	p.emit(EventVolume)
}

// AddSpeed changes the output rate by deltaHz within the configured bounds. The sink
// is reopened at the new rate; the decode position is kept.
func (p *Player) AddSpeed(deltaHz int) {
	p.mu.Lock()
	if p.originalRate == 0 {
		p.mu.Unlock()
		return
	}
	p.sampleRate = p.clampRate(p.sampleRate + deltaHz)
	p.speed = float64(p.sampleRate) / float64(p.originalRate)
	p.changeParams = true
	p.mu.Unlock()

	p.signal()
	p.emit(EventSpeed)
}

// RestoreSpeed plays at the track's own rate again.
func (p *Player) RestoreSpeed() {
	p.mu.Lock()
	if p.originalRate == 0 || p.sampleRate == p.originalRate {
		p.speed = 1
		p.mu.Unlock()
		return
	}
	p.sampleRate = p.originalRate
	p.speed = 1
	p.changeParams = true
	p.mu.Unlock()

	p.signal()
	p.emit(EventSpeed)
}

func (p *Player) Pause() {
	p.updatePause(func(bool) bool { return true })
}

func (p *Player) Resume() {
	p.updatePause(func(bool) bool { return false })
}

func (p *Player) TogglePause() {
	p.updatePause(func(paused bool) bool { return !paused })
}

func (p *Player) updatePause(next func(paused bool) bool) {
	p.mu.Lock()
	paused := next(p.paused)
	if p.stopped || p.paused == paused {
		p.mu.Unlock()
		return
	}
	p.paused = paused
	p.pauseCond.Broadcast()
	p.mu.Unlock()

	p.signal()
	p.emit(EventStatus)
}

// Next skips to the following track, wrapping at the end of the list.
func (p *Player) Next() {
	p.requestTrack(func() { p.next = true })
}

// Prev goes back one track, wrapping at the start of the list.
func (p *Player) Prev() {
	p.requestTrack(func() { p.prev = true })
}

// PlaySelected starts the track under the selection cursor.
func (p *Player) PlaySelected() {
	p.requestTrack(func() { p.newTrack = true })
}

// PlayIndex selects track i (0-based, clamped) and starts it.
func (p *Player) PlayIndex(i int) {
	p.requestTrack(func() {
		p.cat.Select(i, false)
		p.newTrack = true
	})
}

func (p *Player) requestTrack(set func()) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	set()
	p.pauseCond.Broadcast()
	p.mu.Unlock()

	p.signal()
}

// Quit ends the session at the next callback boundary. A paused session is woken
// so it can observe the request.
func (p *Player) Quit() {
	p.mu.Lock()
	p.finished = true
	p.pauseCond.Broadcast()
	p.mu.Unlock()

	p.signal()
}

func (p *Player) SetRepeat(m catalog.RepeatMode) {
	p.mu.Lock()
	p.cat.Repeat = m
	p.mu.Unlock()

	p.emit(EventRepeat)
}

func (p *Player) CycleRepeat() {
	p.mu.Lock()
	p.cat.Repeat = p.cat.Repeat.Next()
	p.mu.Unlock()

	p.emit(EventRepeat)
}

// SetWrap sets whether single-step selection wraps around the list.
func (p *Player) SetWrap(wrap bool) {
	p.mu.Lock()
	p.cat.Wrap = wrap
	p.mu.Unlock()
}

// Selection moves. They only touch the selection cursor.

func (p *Player) SelectDown()       { p.withCatalog((*catalog.Catalog).Down) }
func (p *Player) SelectUp()         { p.withCatalog((*catalog.Catalog).Up) }
func (p *Player) SelectFirst()      { p.withCatalog((*catalog.Catalog).First) }
func (p *Player) SelectLast()       { p.withCatalog((*catalog.Catalog).Last) }
func (p *Player) SelectCurrent()    { p.withCatalog((*catalog.Catalog).SelectCurrent) }
func (p *Player) SelectPage(n int)  { p.withCatalog(func(c *catalog.Catalog) { c.Page(n) }) }
func (p *Player) SelectIndex(i int) { p.withCatalog(func(c *catalog.Catalog) { c.Select(i, false) }) }

func (p *Player) withCatalog(fn func(*catalog.Catalog)) {
	p.mu.Lock()
	fn(p.cat)
	p.mu.Unlock()
}

// Search runs a new query and moves the selection to its first match.
func (p *Player) Search(query string, dir search.Direction) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx, ok := p.search.Search(p.cat.Names(), query, dir)
	if ok {
		p.cat.Select(idx, false)
	}
	return ok
}

// JumpMatch moves to the next or previous match of the last search.
func (p *Player) JumpMatch(dir search.Direction) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx, ok := p.search.Jump(dir)
	if ok {
		p.cat.Select(idx, false)
	}
	return ok
}
