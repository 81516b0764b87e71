// Package testutil provides helpers for end-to-end tests against a running
// room server.
package testutil

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"
)

// LineClient is a JSON-lines test client.
type LineClient struct {
	conn   net.Conn
	reader *bufio.Reader
	t      *testing.T
}

// NewLineClient dials the given address and returns a test client.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected LineClient or fails the test.
func NewLineClient(t *testing.T, addr string) *LineClient {
	t.Helper()
	start := time.Now()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", addr, err, time.Since(start))
	}

	t.Cleanup(func() {
		conn.Close()
	})

	return &LineClient{
		conn:   conn,
		reader: bufio.NewReader(conn),
		t:      t,
	}
}

// Send encodes msg as one JSON line.
//
// Postcondition: The encoded message and '\n' are written to the connection.
func (c *LineClient) Send(msg map[string]any) {
	c.t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("encoding %v: %v", msg, err)
	}
	c.SendRaw(string(data))
}

// SendRaw writes text followed by '\n' without any encoding.
func (c *LineClient) SendRaw(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := c.conn.Write([]byte(text + "\n")); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Next reads and decodes the next line.
//
// Postcondition: Returns the decoded object, or fails the test after timeout.
func (c *LineClient) Next(timeout time.Duration) map[string]any {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		c.t.Fatalf("reading line: got %q, error: %v", line, err)
	}
	var msg map[string]any
	if err := json.Unmarshal(line, &msg); err != nil {
		c.t.Fatalf("decoding %q: %v", line, err)
	}
	return msg
}

// Expect reads lines until one with the given type arrives, skipping others.
//
// Postcondition: Returns the matching message, or fails the test after timeout.
func (c *LineClient) Expect(msgType string, timeout time.Duration) map[string]any {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			c.t.Fatalf("no %q message within %s", msgType, timeout)
		}
		msg := c.Next(remaining)
		if msg["type"] == msgType {
			return msg
		}
	}
}

// ExpectStateWhere reads state messages until pred accepts one.
//
// Postcondition: Returns the accepted state object, or fails the test after timeout.
func (c *LineClient) ExpectStateWhere(pred func(state map[string]any) bool, timeout time.Duration) map[string]any {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		msg := c.Expect("state", time.Until(deadline))
		state, _ := msg["state"].(map[string]any)
		if pred(state) {
			return state
		}
	}
}

// Close closes the underlying connection.
func (c *LineClient) Close() {
	c.conn.Close()
}
