package ppm

import (
	"errors"
	"io"
)

const (
	MinPulse uint16 = 1000
	MaxPulse uint16 = 2000
)

var ErrPulseRange = errors.New("pulse width out of range")

// Servo produces the pulse train. Zero microseconds stops the output.
type Servo interface {
	SetMicroseconds(microseconds int16)
}

// Device holds the output state of the pulse generator
type Device struct {
	servo Servo
	in    io.ByteReader
	out   io.Writer

	enabled bool
	pulse   uint16
}

var _ Controller = &Device{}

// NewDevice starts with the output disabled and the pulse at MinPulse
func NewDevice(s Servo, in io.ByteReader, out io.Writer) *Device {
	d := &Device{
		servo: s,
		in:    in,
		out:   out,
		pulse: MinPulse,
	}
	d.apply()
	return d
}

func (d *Device) Enable(on bool) {
	d.enabled = on
	d.apply()
}

func (d *Device) SetPulse(us uint16) error {
	if us < MinPulse || us > MaxPulse {
		return ErrPulseRange
	}
	d.pulse = us
	d.apply()
	return nil
}

func (d *Device) apply() {
	if !d.enabled {
		d.servo.SetMicroseconds(0)
		return
	}
	d.servo.SetMicroseconds(int16(d.pulse))
}

func (d *Device) State() (bool, uint16) {
	return d.enabled, d.pulse
}

func (d *Device) ReadByte() (byte, error) {
	return d.in.ReadByte()
}

func (d *Device) Print(s string) {
	d.out.Write([]byte(s))
}
