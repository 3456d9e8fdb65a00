package driver

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrTimeout = errors.New("timeout waiting for response")

const defaultReadTimeout = 50 * time.Millisecond

// lineConn exchanges newline-terminated commands and responses over a Port
type lineConn struct {
	port    Port
	timeout time.Duration
	buf     []byte
}

func newLineConn(port Port, timeout time.Duration) (*lineConn, error) {
	err := port.SetReadTimeout(timeout)
	if err != nil {
		return nil, fmt.Errorf("error setting read timeout: %w", err)
	}
	return &lineConn{port: port, timeout: timeout}, nil
}

func (c *lineConn) command(cmd string) error {
	_, err := c.port.Write([]byte(cmd + "\n"))
	if err != nil {
		return fmt.Errorf("error writing %q: %w", cmd, err)
	}
	return nil
}

// query sends cmd and returns the next response line. Anything received
// before the command was sent is discarded.
func (c *lineConn) query(cmd string) (string, error) {
	c.buf = c.buf[:0]
	if err := c.command(cmd); err != nil {
		return "", err
	}
	return c.readLine()
}

func (c *lineConn) readLine() (string, error) {
	deadline := time.Now().Add(c.timeout)
	tmp := make([]byte, 64)
	for {
		if i := bytes.IndexByte(c.buf, '\n'); i >= 0 {
			line := strings.TrimSpace(string(c.buf[:i]))
			c.buf = append(c.buf[:0], c.buf[i+1:]...)
			return line, nil
		}
		if time.Now().After(deadline) {
			return "", ErrTimeout
		}

		n, err := c.port.Read(tmp)
		if err != nil {
			return "", fmt.Errorf("error reading response: %w", err)
		}
		c.buf = append(c.buf, tmp[:n]...)
	}
}
