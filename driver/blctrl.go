package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/bus"
	"github.com/calvinmclean/teststand/config"
	"github.com/calvinmclean/teststand/paramfile"
	"github.com/calvinmclean/teststand/unit"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// BLCtrlAddr is the 7-bit address of the first BL-Ctrl on the bus
const BLCtrlAddr uint16 = 0x29

// BLCtrl drives a BL-Ctrl 1.2 brushless controller over I2C. Every transfer
// writes the 8-bit setpoint and reads back the status: current in 100mA
// steps, the PWM limit and the temperature. The controller stops on its own
// when it is not refreshed, so it has no separate output enable.
type BLCtrl struct {
	i2cBus  i2c.BusCloser
	dev     *i2c.Dev
	lock    *bus.Mutex
	display Display
	log     logrus.FieldLogger

	cfg *configGroup
	// value is the requested setpoint. The limit is applied on every transfer.
	value    int32
	readback Readback
}

var _ Driver = &BLCtrl{}

func NewBLCtrl(env Env) (Driver, error) {
	if env.Links.BLCtrl == nil {
		return nil, ErrNoLink
	}

	b, addr, err := env.Links.BLCtrl()
	if err != nil {
		return nil, fmt.Errorf("error opening i2c bus: %w", err)
	}

	lock := env.Bus
	if lock == nil {
		lock = bus.NewMutex()
	}

	d := &BLCtrl{
		i2cBus: b,
		dev:    &i2c.Dev{Bus: b, Addr: addr},
		lock:   lock,
		log:    env.logger("BLCtrl1.2").WithField("addr", fmt.Sprintf("0x%02X", addr)),
	}
	d.cfg = newConfigGroup(env, "BLCtrl", d.log)

	if !d.transfer(nil) {
		b.Close()
		d.cfg.remove()
		return nil, fmt.Errorf("no BL-Ctrl answering at 0x%02X", addr)
	}

	d.display = env.display()
	d.updateDisplay()
	return d, nil
}

func (d *BLCtrl) Capabilities() Capabilities {
	return Capabilities{
		Modes:  Modes(teststand.ControlModePercentage),
		Fields: Fields(teststand.FieldCurrent),
	}
}

func (d *BLCtrl) SetRunning(bool) {}

func (d *BLCtrl) SetControl(mode teststand.ControlMode, value int32) {
	if mode != teststand.ControlModePercentage {
		return
	}

	d.value = min(max(value, 0), teststand.PercentFull)
	d.transfer(nil)
	d.updateDisplay()
}

// Readback refreshes the setpoint and reads the status. When the bus is
// busy the previous snapshot is kept and the next poll tries again.
func (d *BLCtrl) Readback() Readback {
	status := make([]byte, 3)
	if d.transfer(status) {
		current := physic.ElectricCurrent(status[0]) * 100 * physic.MilliAmpere
		d.readback = Readback{Current: int32(current / physic.MicroAmpere)}
	}
	return d.readback
}

// output is the setpoint byte for the requested value under the current limit
func (d *BLCtrl) output() byte {
	v := min(d.value, d.cfg.limit.Load())
	return byte(int64(v) * 255 / int64(teststand.PercentFull))
}

func (d *BLCtrl) transfer(r []byte) bool {
	if !d.lock.TryLock(bus.DefaultTimeout) {
		d.log.Debug("bus busy")
		return false
	}
	defer d.lock.Unlock()

	if err := d.dev.Tx([]byte{d.output()}, r); err != nil {
		d.log.WithError(err).Debug("transfer failed")
		return false
	}
	return true
}

func (d *BLCtrl) Display() Display {
	return d.display
}

func (d *BLCtrl) updateDisplay() {
	d.display.SetLines(
		"BL-Ctrl 1.2",
		"Set: "+unit.Format(min(d.value, d.cfg.limit.Load()), 7, unit.Percent),
		"Limit: "+unit.Format(d.cfg.limit.Load(), 7, unit.Percent),
	)
}

func (d *BLCtrl) Close() error {
	d.value = 0
	var err error
	if !d.transfer(nil) {
		err = errors.New("error stopping BL-Ctrl")
	}
	d.cfg.remove()
	d.display.Release()
	return multierr.Append(err, d.i2cBus.Close())
}

// configGroup persists the setpoint limit of a backend while it is live
type configGroup struct {
	section string
	limit   atomic.Int32
	reg     *config.Registry
	id      int
}

func newConfigGroup(env Env, section string, log logrus.FieldLogger) *configGroup {
	g := &configGroup{section: section}
	g.limit.Store(teststand.PercentFull)
	if env.Config == nil {
		return g
	}

	g.reg = env.Config
	g.id = env.Config.Add(
		func(w io.Writer) error {
			limit := g.limit.Load()
			return multierr.Combine(
				paramfile.Comment(w, section+" configuration"),
				paramfile.Write(w, paramfile.Int32(paramfile.Key(section, "Limit"), &limit)),
			)
		},
		func(_ context.Context, t paramfile.Table) error {
			limit := g.limit.Load()
			if err := t.Read(paramfile.Int32(paramfile.Key(section, "Limit"), &limit)); err != nil {
				return err
			}
			limit = min(max(limit, 0), teststand.PercentFull)
			g.limit.Store(limit)
			log.WithField("limit", limit).Debug("restored setpoint limit")
			return nil
		},
	)
	return g
}

func (g *configGroup) remove() {
	if g.reg != nil {
		g.reg.Remove(g.id)
		g.reg = nil
	}
}
