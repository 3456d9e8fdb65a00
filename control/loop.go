// Package control runs the driver control loop: it owns the driver panel
// settings and the live driver, reacts to panel events and polls readback.
package control

import (
	"context"
	"time"

	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/config"
	"github.com/calvinmclean/teststand/driver"
	"github.com/sirupsen/logrus"
)

const (
	// WakeInterval is the longest the loop waits for events before polling readback
	WakeInterval = 100 * time.Millisecond
	// DefaultSyncTimeout bounds the acknowledgment handshake of Sync
	DefaultSyncTimeout = 2 * time.Second
)

// Options configures a Loop
type Options struct {
	Drivers driver.Registry
	Env     driver.Env
	Panel   Panel
	Dialog  RampDialog
	// Config receives the loop's settings group. It is not registered when nil.
	Config *config.Registry
	Log    logrus.FieldLogger
}

// Loop owns Settings, RampSettings and at most one live driver. Every
// method except Run may be called from any goroutine.
type Loop struct {
	drivers driver.Registry
	env     driver.Env
	panel   Panel
	dialog  RampDialog
	config  *config.Registry
	log     logrus.FieldLogger

	events   *notifier
	configID int

	// owned by the Run goroutine
	driver   driver.Driver
	readback driver.Readback

	Ramp        RampRunner
	SyncTimeout time.Duration
}

func New(opts Options) *Loop {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	drivers := opts.Drivers
	if drivers == nil {
		drivers = driver.Default
	}

	l := &Loop{
		drivers:     drivers,
		env:         opts.Env,
		panel:       opts.Panel,
		dialog:      opts.Dialog,
		config:      opts.Config,
		log:         log.WithField("component", "driver-control"),
		events:      newNotifier(),
		Ramp:        NewRampRunner(),
		SyncTimeout: DefaultSyncTimeout,
	}
	if l.env.Log == nil {
		l.env.Log = log
	}
	if l.config != nil {
		l.configID = l.config.Add(l.writeConfig, l.readConfig)
	}
	return l
}

// Post applies change to the settings and notifies the loop of ev. The
// loop observes the changed settings when it handles ev.
func (l *Loop) Post(ev Event, change func(*Settings)) {
	l.events.post(ev, change)
}

// Settings returns a snapshot of the current settings
func (l *Loop) Settings() Settings {
	s, _ := l.events.snapshot()
	return s
}

// RampSettings returns a snapshot of the ramp configuration
func (l *Loop) RampSettings() RampSettings {
	_, rs := l.events.snapshot()
	return rs
}

// Drivers returns the registry the loop selects drivers from
func (l *Loop) Drivers() driver.Registry {
	return l.drivers
}

// Sync returns once the loop has handled everything posted before the
// call, or ErrNotDrained after SyncTimeout.
func (l *Loop) Sync(ctx context.Context) error {
	return l.events.sync(ctx, l.SyncTimeout)
}

// Run handles events until ctx is done, then closes the live driver and
// unregisters the settings group. A ramp run in progress is finished first.
func (l *Loop) Run(ctx context.Context) error {
	if l.driver == nil {
		l.disable()
	}

	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			return nil
		default:
		}

		events, settings := l.events.wait(ctx, WakeInterval)
		l.handle(events, settings)
		l.poll()
	}
}

func (l *Loop) handle(events Event, s Settings) {
	if events == 0 {
		return
	}
	l.log.WithField("events", events).Debug("handling events")

	if events.Has(EventDriverChanged) {
		s = l.changeDriver(s)
	}

	// EventModeChanged needs no handling. The mode is passed to the driver
	// with every setpoint.

	if events.Has(EventMotorToggled) && l.driver != nil {
		l.driver.SetRunning(s.MotorOn)
		l.driver.SetControl(s.Mode, s.Setpoint)
	}

	if events.Has(EventSetpointChanged) {
		if l.driver != nil {
			l.driver.SetControl(s.Mode, s.Setpoint)
		}
		l.panel.SetpointEntry.Redraw(false)
		l.panel.SetpointSlider.Redraw(true)
	}

	if events.Has(EventOpenRampConfig) {
		l.configureRamp(s.Mode)
	}

	if events.Has(EventRunRamp) {
		l.Ramp.Run(l.dialog.Progress("Running ramp"))
	}
}

func (l *Loop) changeDriver(s Settings) Settings {
	s = l.events.update(func(s *Settings) { s.MotorOn = false })
	l.readback = driver.Readback{}
	l.panel.MotorOn.Redraw(true)

	l.closeDriver()

	d, err := l.drivers.New(s.Driver, l.env)
	if err != nil {
		l.log.WithError(err).WithField("driver", l.drivers.Name(s.Driver)).Error("error creating driver")
		s = l.events.update(func(s *Settings) { s.Driver = driver.None })
		l.panel.Driver.Redraw(true)
	}
	l.driver = d

	if l.driver == nil {
		l.disable()
		l.panel.Container.Redraw(true)
		return s
	}

	caps := l.driver.Capabilities()
	if !caps.Modes.Has(s.Mode) {
		for _, m := range teststand.ControlModes {
			if caps.Modes.Has(m) {
				s = l.events.update(func(s *Settings) { s.Mode = m })
				break
			}
		}
	}

	l.enable(caps)
	l.panel.Container.Attach(l.driver.Display())
	l.panel.Container.Redraw(true)

	l.log.WithField("driver", l.drivers.Name(s.Driver)).Info("driver selected")
	return s
}

// enable matches the panel to caps
func (l *Loop) enable(caps driver.Capabilities) {
	l.panel.MotorOn.SetEnabled(caps.OnOff)
	for _, m := range teststand.ControlModes {
		l.panel.Modes[m].SetEnabled(caps.Modes.Has(m))
		l.panel.Modes[m].Redraw(true)
	}
	for _, f := range teststand.Fields {
		l.panel.Readback[f].SetVisible(caps.Fields.Has(f))
	}

	control := caps.Modes != 0
	l.panel.SetpointEntry.SetEnabled(control)
	l.panel.SetpointSlider.SetEnabled(control)
	l.panel.Ramp.SetEnabled(control)
}

// disable returns the panel to the state with no driver
func (l *Loop) disable() {
	l.enable(driver.Capabilities{})
	for _, f := range teststand.Fields {
		l.panel.Readback[f].Set(0)
	}
}

func (l *Loop) closeDriver() {
	if l.driver == nil {
		return
	}
	if err := l.driver.Close(); err != nil {
		l.log.WithError(err).Warn("error closing driver")
	}
	l.driver = nil
}

func (l *Loop) configureRamp(mode teststand.ControlMode) {
	rs := l.RampSettings()
	l.dialog.Configure(mode, &rs, func() {
		l.Post(EventRunRamp, nil)
	})
	rs.SetFilename(rs.Filename)
	rs.SetLength(rs.Length)
	l.events.setRamp(rs)
}

func (l *Loop) poll() {
	if l.driver == nil {
		return
	}

	l.readback = l.driver.Readback()
	fields := l.driver.Capabilities().Fields
	for _, f := range teststand.Fields {
		if fields.Has(f) {
			l.panel.Readback[f].Set(l.readback.Get(f))
		}
	}
}

// Readback returns the last snapshot. It must only be called from the
// goroutine running the loop or after Run returned.
func (l *Loop) Readback() driver.Readback {
	return l.readback
}

func (l *Loop) shutdown() {
	l.closeDriver()
	l.readback = driver.Readback{}
	if l.config != nil {
		l.config.Remove(l.configID)
	}
	l.events.update(func(s *Settings) { *s = DefaultSettings() })
	l.events.setRamp(DefaultRampSettings())
	l.log.Debug("driver control stopped")
}
