package sim

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

var ErrClosed = errors.New("port closed")

// port is an in-memory serial port. Written bytes go to write, the device
// answers through reply.
type port struct {
	mtx     sync.Mutex
	out     bytes.Buffer
	ready   chan struct{}
	timeout time.Duration
	closed  bool

	write func(b []byte)
	close func()
}

func newPort(write func([]byte), close func()) *port {
	return &port{
		ready:   make(chan struct{}, 1),
		timeout: time.Second,
		write:   write,
		close:   close,
	}
}

func (p *port) reply(b []byte) {
	p.mtx.Lock()
	p.out.Write(b)
	p.mtx.Unlock()

	select {
	case p.ready <- struct{}{}:
	default:
	}
}

func (p *port) Write(b []byte) (int, error) {
	p.mtx.Lock()
	closed := p.closed
	p.mtx.Unlock()
	if closed {
		return 0, ErrClosed
	}

	p.write(b)
	return len(b), nil
}

// Read behaves like a serial port: it returns 0 bytes and no error once the
// read timeout expires without data
func (p *port) Read(b []byte) (int, error) {
	p.mtx.Lock()
	if p.closed {
		p.mtx.Unlock()
		return 0, ErrClosed
	}
	if p.out.Len() > 0 {
		defer p.mtx.Unlock()
		return p.out.Read(b)
	}
	timeout := p.timeout
	p.mtx.Unlock()

	select {
	case <-p.ready:
	case <-time.After(timeout):
		return 0, nil
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.out.Len() == 0 {
		return 0, nil
	}
	return p.out.Read(b)
}

func (p *port) SetReadTimeout(t time.Duration) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.timeout = t
	return nil
}

func (p *port) Close() error {
	p.mtx.Lock()
	if p.closed {
		p.mtx.Unlock()
		return nil
	}
	p.closed = true
	p.mtx.Unlock()

	if p.close != nil {
		p.close()
	}
	return nil
}
