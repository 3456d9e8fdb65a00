package sim

import (
	"io"
	"sync"

	"github.com/calvinmclean/teststand/firmware/ppm"
)

// PPM runs the pulse generator firmware against an in-memory serial port
type PPM struct {
	*port

	in      chan byte
	wmtx    sync.Mutex
	stopped bool
	done    chan struct{}

	smtx  sync.Mutex
	pulse int16
}

func NewPPM() *PPM {
	p := &PPM{
		in:   make(chan byte, 256),
		done: make(chan struct{}),
	}
	p.port = newPort(p.receive, p.stop)

	device := ppm.NewDevice(p, p, writerFunc(p.reply))
	go func() {
		defer close(p.done)
		ppm.Run(device)
	}()
	return p
}

func (p *PPM) receive(b []byte) {
	p.wmtx.Lock()
	defer p.wmtx.Unlock()
	if p.stopped {
		return
	}
	for _, c := range b {
		p.in <- c
	}
}

func (p *PPM) stop() {
	p.wmtx.Lock()
	p.stopped = true
	close(p.in)
	p.wmtx.Unlock()
	<-p.done
}

// ReadByte feeds the firmware
func (p *PPM) ReadByte() (byte, error) {
	b, ok := <-p.in
	if !ok {
		return 0, io.EOF
	}
	return b, nil
}

// SetMicroseconds records the pulse width the firmware outputs
func (p *PPM) SetMicroseconds(us int16) {
	p.smtx.Lock()
	defer p.smtx.Unlock()
	p.pulse = us
}

// Pulse returns the current pulse width, 0 while the output is disabled
func (p *PPM) Pulse() int16 {
	p.smtx.Lock()
	defer p.smtx.Unlock()
	return p.pulse
}

type writerFunc func([]byte)

func (f writerFunc) Write(b []byte) (int, error) {
	f(b)
	return len(b), nil
}
