package driver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/unit"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// BLDriverVersion is the range of ESC firmware the BLDriver protocol supports
const BLDriverVersion = ">= 1.0.0, < 2.0.0"

// BLDriverMaxRPM bounds the speed setpoint
const BLDriverMaxRPM = 50000

// BLDriver talks to a brushless ESC that reports current, voltage and speed
// over a serial line protocol:
//
//	V               -> "V <semver>"
//	ON / OFF        switch the bridge
//	D<ppm>          duty cycle, 1000000 = 100%
//	R<rpm>          closed-loop speed
//	T               -> "T <uA> <uV> <rpm>"
type BLDriver struct {
	conn    *lineConn
	display Display
	log     logrus.FieldLogger
	version *semver.Version

	running  bool
	mode     teststand.ControlMode
	value    int32
	readback Readback
}

var _ Driver = &BLDriver{}

func NewBLDriver(env Env) (Driver, error) {
	if env.Links.BLDriver == nil {
		return nil, ErrNoLink
	}

	port, err := env.Links.BLDriver()
	if err != nil {
		return nil, fmt.Errorf("error opening port: %w", err)
	}

	d, err := newBLDriver(port, env)
	if err != nil {
		port.Close()
		return nil, err
	}
	return d, nil
}

func newBLDriver(port Port, env Env) (*BLDriver, error) {
	conn, err := newLineConn(port, defaultReadTimeout)
	if err != nil {
		return nil, err
	}

	version, err := checkVersion(conn)
	if err != nil {
		return nil, err
	}

	if err := conn.command("OFF"); err != nil {
		return nil, err
	}

	d := &BLDriver{
		conn:    conn,
		log:     env.logger("BLDriver").WithField("version", version.String()),
		version: version,
	}
	d.display = env.display()
	d.updateDisplay()
	return d, nil
}

func checkVersion(conn *lineConn) (*semver.Version, error) {
	resp, err := conn.query("V")
	if err != nil {
		return nil, fmt.Errorf("error querying version: %w", err)
	}

	versionString, ok := strings.CutPrefix(resp, "V ")
	if !ok {
		return nil, fmt.Errorf("unexpected version response %q", resp)
	}

	version, err := semver.NewVersion(versionString)
	if err != nil {
		return nil, fmt.Errorf("invalid firmware version %q: %w", versionString, err)
	}

	constraint, err := semver.NewConstraint(BLDriverVersion)
	if err != nil {
		return nil, err
	}

	if !constraint.Check(version) {
		return nil, fmt.Errorf("unsupported firmware version %s: require %s", version, BLDriverVersion)
	}
	return version, nil
}

func (d *BLDriver) Capabilities() Capabilities {
	return Capabilities{
		OnOff:  true,
		Modes:  Modes(teststand.ControlModePercentage, teststand.ControlModeRPM),
		Fields: Fields(teststand.FieldCurrent, teststand.FieldVoltage, teststand.FieldRPM),
	}
}

func (d *BLDriver) SetRunning(on bool) {
	cmd := "OFF"
	if on {
		cmd = "ON"
	}
	if err := d.conn.command(cmd); err != nil {
		d.log.WithError(err).Warn("error switching bridge")
		return
	}
	d.running = on
	d.updateDisplay()
}

func (d *BLDriver) SetControl(mode teststand.ControlMode, value int32) {
	var cmd string
	switch mode {
	case teststand.ControlModePercentage:
		value = min(max(value, 0), teststand.PercentFull)
		cmd = "D" + strconv.Itoa(int(value))
	case teststand.ControlModeRPM:
		value = min(max(value, 0), BLDriverMaxRPM)
		cmd = "R" + strconv.Itoa(int(value))
	default:
		return
	}

	if err := d.conn.command(cmd); err != nil {
		d.log.WithError(err).Warn("error setting control value")
		return
	}
	d.mode = mode
	d.value = value
	d.updateDisplay()
}

// Readback queries telemetry. The previous snapshot is returned when the
// ESC does not answer in time.
func (d *BLDriver) Readback() Readback {
	resp, err := d.conn.query("T")
	if err != nil {
		d.log.WithError(err).Debug("telemetry unavailable")
		return d.readback
	}

	var rb Readback
	_, err = fmt.Sscanf(resp, "T %d %d %d", &rb.Current, &rb.Voltage, &rb.RPM)
	if err != nil {
		d.log.WithError(err).WithField("response", resp).Debug("invalid telemetry")
		return d.readback
	}

	d.readback = rb
	return rb
}

func (d *BLDriver) Display() Display {
	return d.display
}

func (d *BLDriver) updateDisplay() {
	state := "off"
	if d.running {
		state = "on"
	}

	set := unit.Format(d.value, 7, unit.Percent)
	if d.mode == teststand.ControlModeRPM {
		set = unit.Format(d.value, 7, unit.None) + "rpm"
	}

	d.display.SetLines(
		"BLDriver "+d.version.String(),
		"Bridge: "+state,
		"Set: "+set,
	)
}

func (d *BLDriver) Close() error {
	err := d.conn.command("OFF")
	d.display.Release()
	return multierr.Append(err, d.conn.port.Close())
}
