// Package driver defines the contract every motor-driver backend implements
// and the ordered registry the operator selects backends from.
package driver

import (
	"errors"
	"io"
	"time"

	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/bus"
	"github.com/calvinmclean/teststand/config"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
)

var (
	ErrNoLink        = errors.New("no hardware link configured")
	ErrUnknownDriver = errors.New("unknown driver")
)

// Driver controls one class of motor-driver hardware. Calls outside the
// driver's Capabilities are ignored.
type Driver interface {
	Capabilities() Capabilities
	SetRunning(on bool)
	SetControl(mode teststand.ControlMode, value int32)
	Readback() Readback
	Display() Display
	// Close releases the display and the hardware link
	Close() error
}

// ModeSet is a set of control modes
type ModeSet uint8

func Modes(modes ...teststand.ControlMode) ModeSet {
	var s ModeSet
	for _, m := range modes {
		s |= 1 << m
	}
	return s
}

func (s ModeSet) Has(m teststand.ControlMode) bool {
	return m.Valid() && s&(1<<m) != 0
}

// FieldSet is a set of readback fields
type FieldSet uint8

func Fields(fields ...teststand.Field) FieldSet {
	var s FieldSet
	for _, f := range fields {
		s |= 1 << f
	}
	return s
}

func (s FieldSet) Has(f teststand.Field) bool {
	return f <= teststand.FieldThrust && s&(1<<f) != 0
}

// Capabilities describes what a driver supports
type Capabilities struct {
	OnOff  bool
	Modes  ModeSet
	Fields FieldSet
}

// Readback is a telemetry snapshot in fixed-point units
type Readback struct {
	Current int32
	Voltage int32
	RPM     int32
	Thrust  int32
}

func (r Readback) Get(f teststand.Field) int32 {
	switch f {
	case teststand.FieldCurrent:
		return r.Current
	case teststand.FieldVoltage:
		return r.Voltage
	case teststand.FieldRPM:
		return r.RPM
	case teststand.FieldThrust:
		return r.Thrust
	default:
		return 0
	}
}

// Size is a panel area in pixels
type Size struct {
	W, H int
}

// PanelSize is the area every driver display is given
var PanelSize = Size{W: 120, H: 170}

// Display is a driver-owned area of the panel
type Display interface {
	SetLines(lines ...string)
	Release()
}

// Surface creates driver displays
type Surface interface {
	NewDisplay(size Size) Display
}

type noopDisplay struct{}

var _ Display = noopDisplay{}

func (noopDisplay) SetLines(...string) {}
func (noopDisplay) Release()           {}

// Port is a byte link to a serial device
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// Links opens the hardware links the backends talk over. A nil opener
// makes the corresponding backend fail construction with ErrNoLink.
type Links struct {
	PPM      func() (Port, error)
	BLDriver func() (Port, error)
	// BLCtrl returns the bus and the device address
	BLCtrl func() (i2c.BusCloser, uint16, error)
}

// Env is everything a backend needs to construct itself
type Env struct {
	Surface Surface
	Size    Size
	Links   Links
	// Bus guards the shared I2C bus. Backends create their own when nil.
	Bus *bus.Mutex
	// Config lets backends persist their own settings groups
	Config *config.Registry
	Log    logrus.FieldLogger
}

func (e Env) display() Display {
	if e.Surface == nil {
		return noopDisplay{}
	}
	size := e.Size
	if size == (Size{}) {
		size = PanelSize
	}
	return e.Surface.NewDisplay(size)
}

func (e Env) logger(name string) logrus.FieldLogger {
	log := e.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return log.WithField("driver", name)
}
