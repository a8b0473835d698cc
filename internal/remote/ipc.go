/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"kmp/internal/catalog"
	"kmp/internal/player"
	"kmp/pkg/defaults"
)

// Socket serves the line protocol. The first client that sends a control command
// becomes the owner; others may only query until it disconnects.
type Socket struct {
	Path string
	ctl  Controller
	log  *slog.Logger

	ownerMu sync.Mutex
	owner   *client
}

func NewSocket(path string, ctl Controller, log *slog.Logger) *Socket {
	if log == nil {
		log = slog.Default()
	}
	return &Socket{Path: path, ctl: ctl, log: log}
}

type client struct {
	net.Conn
	wmu    sync.Mutex
	cancel func()
}

func (c *client) reply(format string, args ...any) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	fmt.Fprintf(c.Conn, format+"\n", args...)
}

func (c *client) replyJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		c.reply("ERR INTERNAL")
		return
	}
	c.reply("%s", b)
}

// Listen binds the socket, replacing a stale file from an earlier run.
func (s *Socket) Listen() (net.Listener, error) {
	_ = os.Remove(s.Path)
	ln, err := net.Listen("unix", s.Path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.Path, err)
	}
	return ln, nil
}

// Serve accepts clients until ctx is done, then removes the socket file.
func (s *Socket) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer os.Remove(s.Path)

	var wg sync.WaitGroup
	defer wg.Wait()

	var connsMu sync.Mutex
	conns := map[net.Conn]struct{}{}
	defer func() {
		connsMu.Lock()
		for c := range conns {
			c.Close()
		}
		connsMu.Unlock()
	}()

	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn("socket accept", "err", err)
			continue
		}
		connsMu.Lock()
		conns[c] = struct{}{}
		connsMu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handle(&client{Conn: c})
			connsMu.Lock()
			delete(conns, c)
			connsMu.Unlock()
		}()
	}
}

func (s *Socket) isOwner(c *client) bool {
	s.ownerMu.Lock()
	defer s.ownerMu.Unlock()
	return s.owner == c
}

func (s *Socket) claimOwner(c *client) bool {
	s.ownerMu.Lock()
	defer s.ownerMu.Unlock()
	if s.owner == c {
		return true
	}
	if s.owner != nil {
		return false
	}
	s.owner = c

	events := make(chan []byte, 64)
	var sendMu sync.Mutex
	closed := false
	unsubscribe := s.ctl.Subscribe(func(ev player.Event) {
		b, err := json.Marshal(eventView{Type: string(ev.Type), Status: viewOf(ev.Status)})
		if err != nil {
			return
		}
		sendMu.Lock()
		defer sendMu.Unlock()
		if closed {
			return
		}
		select {
		case events <- b:
		default:
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for b := range events {
			c.reply("EVENT %s", b)
		}
	}()
	c.cancel = func() {
		unsubscribe()
		sendMu.Lock()
		closed = true
		close(events)
		sendMu.Unlock()
		<-done
	}
	return true
}

func (s *Socket) releaseOwner(c *client) {
	s.ownerMu.Lock()
	if s.owner != c {
		s.ownerMu.Unlock()
		return
	}
	s.owner = nil
	s.ownerMu.Unlock()
	c.cancel()
}

type eventView struct {
	Type   string     `json:"type"`
	Status statusView `json:"status"`
}

func (s *Socket) handle(c *client) {
	defer func() {
		c.Close()
		s.releaseOwner(c)
	}()

	sc := bufio.NewScanner(c)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		verb, arg, _ := strings.Cut(line, " ")
		verb = strings.ToUpper(verb)
		arg = strings.TrimSpace(arg)

		if s.query(c, verb) {
			continue
		}
		if !s.claimOwner(c) {
			c.reply("ERR CONTROL_LOCKED")
			continue
		}
		if err := s.control(verb, arg); err != nil {
			c.reply("ERR %s", err)
			continue
		}
		c.reply("OK")
	}
}

// query answers the read-only commands and reports whether verb was one of them.
func (s *Socket) query(c *client, verb string) bool {
	switch verb {
	case "ABOUT":
		c.reply("%s V.%d.%d", defaults.AppName, defaults.VersionMajor, defaults.VersionMinor)
	case "PING":
		c.reply("PONG")
	case "WHOAMI":
		if s.isOwner(c) {
			c.reply("OWNER")
		} else {
			c.reply("OBSERVER")
		}
	case "STATUS":
		c.replyJSON(viewOf(s.ctl.Snapshot()))
	case "LIST":
		type entry struct {
			Index int    `json:"index"`
			Name  string `json:"name"`
		}
		names := s.ctl.Names()
		out := make([]entry, len(names))
		for i, n := range names {
			out[i] = entry{Index: i, Name: n}
		}
		c.replyJSON(out)
	default:
		return false
	}
	return true
}

var errArg = errors.New("ARG")

func (s *Socket) control(verb, arg string) error {
	switch verb {
	case "PLAY":
		i, err := strconv.Atoi(arg)
		if err != nil || i < 0 || i >= s.ctl.Snapshot().Count {
			return errArg
		}
		s.ctl.PlayIndex(i)
	case "PAUSE":
		s.ctl.Pause()
	case "RESUME":
		s.ctl.Resume()
	case "TOGGLE":
		s.ctl.TogglePause()
	case "NEXT":
		s.ctl.Next()
	case "PREV":
		s.ctl.Prev()
	case "STOP", "QUIT":
		s.ctl.Quit()
	case "MUTE":
		s.ctl.ToggleMute()
	case "VOLUME":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return errArg
		}
		s.ctl.SetVolume(v)
	case "SEEK":
		if err := s.ctl.SeekString(arg); err != nil {
			return errArg
		}
	case "REPEAT":
		m, err := catalog.ParseRepeat(arg)
		if err != nil {
			return errArg
		}
		s.ctl.SetRepeat(m)
	case "SPEED":
		if strings.EqualFold(arg, "RESET") {
			s.ctl.RestoreSpeed()
			break
		}
		hz, err := strconv.Atoi(arg)
		if err != nil {
			return errArg
		}
		s.ctl.AddSpeed(hz)
	default:
		return errors.New("UNKNOWN")
	}
	return nil
}
