package driver

import (
	"fmt"

	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/unit"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Pulse widths of the radio PPM signal at 0% and 100%
const (
	PPMMinPulse = 1000
	PPMMaxPulse = 2000
)

// PPM drives a radio-control ESC through the pulse generator firmware. It
// has an output enable and a percentage setpoint but reports no telemetry.
type PPM struct {
	conn    *lineConn
	display Display
	log     logrus.FieldLogger

	running bool
	value   int32
}

var _ Driver = &PPM{}

func NewPPM(env Env) (Driver, error) {
	if env.Links.PPM == nil {
		return nil, ErrNoLink
	}

	port, err := env.Links.PPM()
	if err != nil {
		return nil, fmt.Errorf("error opening port: %w", err)
	}

	conn, err := newLineConn(port, defaultReadTimeout)
	if err != nil {
		port.Close()
		return nil, err
	}

	p := &PPM{
		conn: conn,
		log:  env.logger("PPM"),
	}

	err = multierr.Combine(
		conn.command("E0"),
		conn.command(pulseCommand(0)),
	)
	if err != nil {
		port.Close()
		return nil, err
	}

	p.display = env.display()
	p.updateDisplay()
	return p, nil
}

func pulseCommand(value int32) string {
	return fmt.Sprintf("P%04d", PulseWidth(value))
}

// PulseWidth maps a percentage setpoint onto the PPM pulse width in us
func PulseWidth(value int32) int32 {
	value = min(max(value, 0), teststand.PercentFull)
	return PPMMinPulse + int32(int64(value)*(PPMMaxPulse-PPMMinPulse)/int64(teststand.PercentFull))
}

func (p *PPM) Capabilities() Capabilities {
	return Capabilities{
		OnOff: true,
		Modes: Modes(teststand.ControlModePercentage),
	}
}

func (p *PPM) SetRunning(on bool) {
	cmd := "E0"
	if on {
		cmd = "E1"
	}
	if err := p.conn.command(cmd); err != nil {
		p.log.WithError(err).Warn("error switching output")
		return
	}
	p.running = on
	p.updateDisplay()
}

func (p *PPM) SetControl(mode teststand.ControlMode, value int32) {
	if mode != teststand.ControlModePercentage {
		return
	}
	if err := p.conn.command(pulseCommand(value)); err != nil {
		p.log.WithError(err).Warn("error setting pulse width")
		return
	}
	p.value = value
	p.updateDisplay()
}

func (p *PPM) Readback() Readback {
	return Readback{}
}

func (p *PPM) Display() Display {
	return p.display
}

func (p *PPM) updateDisplay() {
	state := "off"
	if p.running {
		state = "on"
	}
	p.display.SetLines(
		"PPM output: "+state,
		"Set: "+unit.Format(min(max(p.value, 0), teststand.PercentFull), 7, unit.Percent),
		"Pulse: "+unit.Format(PulseWidth(p.value), 6, unit.Time),
	)
}

func (p *PPM) Close() error {
	err := p.conn.command("E0")
	p.display.Release()
	return multierr.Append(err, p.conn.port.Close())
}
