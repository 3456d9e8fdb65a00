package sim

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// BLCtrl simulates a BL-Ctrl 1.2 on its own I2C bus
type BLCtrl struct {
	Motor *Motor
	Addr  uint16

	mtx    sync.Mutex
	closed bool
}

var _ i2c.BusCloser = &BLCtrl{}

func NewBLCtrl(addr uint16) *BLCtrl {
	return &BLCtrl{
		Motor: NewMotor(),
		Addr:  addr,
	}
}

func (b *BLCtrl) String() string {
	return "sim-i2c"
}

func (b *BLCtrl) Tx(addr uint16, w, r []byte) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.closed {
		return ErrClosed
	}
	if addr != b.Addr {
		return fmt.Errorf("no device at 0x%02X", addr)
	}

	if len(w) > 0 {
		b.Motor.SetRunning(w[0] > 0)
		b.Motor.SetDuty(float64(w[0]) / 255)
	}

	if len(r) > 0 {
		_, amps, _ := b.Motor.Sample()
		status := []byte{byte(min(amps*10, 255)), 255, 35}
		copy(r, status)
	}
	return nil
}

func (b *BLCtrl) SetSpeed(physic.Frequency) error {
	return nil
}

func (b *BLCtrl) Close() error {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.closed = true
	return nil
}
