package ui

import (
	"strings"

	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/control"
	"github.com/calvinmclean/teststand/driver"
)

// Controller is the driver control loop as seen by the panel
type Controller interface {
	Post(ev control.Event, change func(*control.Settings))
	Settings() control.Settings
	Drivers() driver.Registry
}

// The handlers below run on the fyne goroutine. They ignore changes made
// while the panel copies settings into its widgets.

func (p *DriverPanel) selectDriver(name string) {
	if p.updating || p.ctrl == nil {
		return
	}
	idx, ok := p.ctrl.Drivers().Index(name)
	if !ok {
		return
	}
	p.ctrl.Post(control.EventDriverChanged, func(s *control.Settings) {
		s.Driver = idx
	})
}

func (p *DriverPanel) toggleMotor(on bool) {
	if p.updating || p.ctrl == nil {
		return
	}
	p.ctrl.Post(control.EventMotorToggled, func(s *control.Settings) {
		s.MotorOn = on
	})
}

func (p *DriverPanel) selectMode(m teststand.ControlMode, selected string) {
	if p.updating || p.ctrl == nil || selected == "" {
		return
	}
	p.ctrl.Post(control.EventModeChanged, func(s *control.Settings) {
		s.Mode = m
	})
	p.showSettings()
}

func (p *DriverPanel) submitSetpoint(text string) {
	if p.ctrl == nil {
		return
	}
	v, ok := rangeFor(p.ctrl.Settings().Mode).parse(strings.TrimSpace(text))
	if !ok {
		p.showSettings()
		return
	}
	p.postSetpoint(v)
}

func (p *DriverPanel) slideSetpoint(value float64) {
	if p.updating || p.ctrl == nil {
		return
	}
	p.postSetpoint(rangeFor(p.ctrl.Settings().Mode).fromSlider(value))
}

func (p *DriverPanel) postSetpoint(v int32) {
	p.ctrl.Post(control.EventSetpointChanged, func(s *control.Settings) {
		s.Setpoint = v
	})
}

func (p *DriverPanel) openRamp() {
	if p.ctrl == nil {
		return
	}
	p.ctrl.Post(control.EventOpenRampConfig, nil)
}
