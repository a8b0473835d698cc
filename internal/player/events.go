/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package player

type EventType string

const (
	EventTrack   EventType = "TRACK_CHANGED"
	EventStatus  EventType = "STATUS"
	EventVolume  EventType = "VOLUME"
	EventSeeked  EventType = "SEEKED"
	EventRepeat  EventType = "REPEAT"
	EventSpeed   EventType = "SPEED"
	EventStopped EventType = "STOPPED"
)

// Event is delivered to subscribers after a state change.
type Event struct {
	Type   EventType
	Status Status
}

// Subscribe registers fn for every event and returns a function that removes it.
// fn runs on the goroutine that caused the change and must not block.
func (p *Player) Subscribe(fn func(Event)) func() {
	p.listenMu.Lock()
	id := p.listenID
	p.listenID++
	p.listeners[id] = fn
	p.listenMu.Unlock()

	return func() {
		p.listenMu.Lock()
		delete(p.listeners, id)
		p.listenMu.Unlock()
	}
}

// emit must be called without p.mu held.
func (p *Player) emit(t EventType) {
	p.listenMu.Lock()
	if len(p.listeners) == 0 {
		p.listenMu.Unlock()
		return
	}
	fns := make([]func(Event), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.listenMu.Unlock()

	ev := Event{Type: t, Status: p.Snapshot()}
	for _, fn := range fns {
		fn(ev)
	}
}
