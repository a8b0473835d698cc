/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package remote

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

var (
	ErrNotOwner = errors.New("control locked by another client")
	ErrRejected = errors.New("command rejected")
)

// Client speaks the socket protocol.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

func Dial(path string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

// Send writes one command line without waiting for the reply.
func (c *Client) Send(line string) error {
	_, err := fmt.Fprintf(c.conn, "%s\n", strings.TrimSpace(line))
	return err
}

// ReadLine returns the next line from the server, events included.
func (c *Client) ReadLine() (string, error) {
	line, err := c.r.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

// Do sends line and returns its reply, skipping any EVENT lines in between.
func (c *Client) Do(line string) (string, error) {
	if err := c.Send(line); err != nil {
		return "", err
	}
	for {
		reply, err := c.ReadLine()
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(reply, "EVENT ") {
			continue
		}
		return reply, replyError(reply)
	}
}

func replyError(reply string) error {
	code, ok := strings.CutPrefix(reply, "ERR ")
	if !ok {
		return nil
	}
	if code == "CONTROL_LOCKED" {
		return ErrNotOwner
	}
	return fmt.Errorf("%w: %s", ErrRejected, code)
}
