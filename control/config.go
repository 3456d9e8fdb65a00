package control

import (
	"context"
	"io"
	"time"

	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/driver"
	"github.com/calvinmclean/teststand/paramfile"
	"go.uber.org/multierr"
)

const (
	driverSection = "Driver"
	rampSection   = "Ramp"
)

func (l *Loop) writeConfig(w io.Writer) error {
	s, rs := l.events.snapshot()

	name := l.drivers.Name(s.Driver)
	if name == "" {
		name = l.drivers.Name(driver.None)
	}
	mode := int8(s.Mode)
	setpoint := s.Setpoint

	length := int32(rs.Length / time.Microsecond)

	return multierr.Combine(
		paramfile.Comment(w, "Driver configuration"),
		paramfile.Write(w,
			paramfile.String(paramfile.Key(driverSection, "Driver"), &name),
			paramfile.Int8(paramfile.Key(driverSection, "ControlMode"), &mode),
			paramfile.Int32(paramfile.Key(driverSection, "Setpoint"), &setpoint),
			paramfile.Int32(paramfile.Key(rampSection, "Start"), &rs.Start),
			paramfile.Int32(paramfile.Key(rampSection, "Stop"), &rs.Stop),
			paramfile.Int32(paramfile.Key(rampSection, "Steps"), &rs.Steps),
			paramfile.Int32(paramfile.Key(rampSection, "Length"), &length),
			paramfile.String(paramfile.Key(rampSection, "Filename"), &rs.Filename),
		),
	)
}

// readConfig restores the settings, posts every settings event and waits
// for the loop to apply them, so later config groups see the restored
// driver already constructed.
func (l *Loop) readConfig(ctx context.Context, t paramfile.Table) error {
	s, rs := l.events.snapshot()

	name := l.drivers.Name(s.Driver)
	mode := int8(s.Mode)
	setpoint := s.Setpoint
	length := int32(rs.Length / time.Microsecond)

	err := t.Read(
		paramfile.String(paramfile.Key(driverSection, "Driver"), &name),
		paramfile.Int8(paramfile.Key(driverSection, "ControlMode"), &mode),
		paramfile.Int32(paramfile.Key(driverSection, "Setpoint"), &setpoint),
		paramfile.Int32(paramfile.Key(rampSection, "Start"), &rs.Start),
		paramfile.Int32(paramfile.Key(rampSection, "Stop"), &rs.Stop),
		paramfile.Int32(paramfile.Key(rampSection, "Steps"), &rs.Steps),
		paramfile.Int32(paramfile.Key(rampSection, "Length"), &length),
		paramfile.String(paramfile.Key(rampSection, "Filename"), &rs.Filename),
	)

	index, ok := l.drivers.Index(name)
	if !ok {
		l.log.WithField("driver", name).Warn("unknown driver in config, selecting none")
		index = driver.None
	}

	controlMode := teststand.ControlMode(mode)
	if !controlMode.Valid() {
		l.log.WithField("mode", mode).Warn("unknown control mode in config, selecting percentage")
		controlMode = teststand.ControlModePercentage
	}

	rs.SetLength(time.Duration(length) * time.Microsecond)
	rs.SetFilename(rs.Filename)
	l.events.setRamp(rs)

	l.Post(SettingsEvents, func(s *Settings) {
		s.Driver = index
		s.MotorOn = false
		s.Mode = controlMode
		s.Setpoint = setpoint
	})

	return multierr.Append(err, l.Sync(ctx))
}
