package linenet

import (
	"bufio"
	"bytes"
	"net"
	"sync"
	"time"
)

// Conn wraps a TCP connection with newline framing. Reads are owned by a
// single goroutine; writes may come from any goroutine and are serialized.
type Conn struct {
	id     string
	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	writeTimeout time.Duration
	closeOnce    sync.Once
	closeErr     error
}

// NewConn wraps a raw connection.
//
// Precondition: raw must be a valid, open network connection.
// Postcondition: Returns a Conn ready for reading and writing.
func NewConn(id string, raw net.Conn, writeTimeout time.Duration) *Conn {
	return &Conn{
		id:           id,
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		writeTimeout: writeTimeout,
	}
}

// ID returns the connection's correlation id.
func (c *Conn) ID() string {
	return c.id
}

// ReadLine blocks until a full line arrives and returns it without the
// trailing "\n" or "\r\n". A final unterminated line is returned together
// with io.EOF.
//
// Postcondition: Returns the next line, or an error (including io.EOF).
func (c *Conn) ReadLine() ([]byte, error) {
	line, err := c.reader.ReadBytes('\n')
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return line, err
}

// Write sends an already framed message.
//
// Postcondition: data is written in full, or an error is returned.
func (c *Conn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// Close closes the underlying connection. It is safe to call more than once.
//
// Postcondition: The connection is closed; a blocked ReadLine returns an error.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.raw.Close()
	})
	return c.closeErr
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
