package hardware

import (
	"errors"
	"fmt"
	"sync"

	"github.com/calvinmclean/teststand/driver"
	"go.bug.st/serial"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const defaultBLCtrlAddr = driver.BLCtrlAddr

var ErrNoSerialPorts = errors.New("no serial ports found")

// GetSerialPorts lists the serial ports of the host
func GetSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}
	if len(ports) == 0 {
		return nil, ErrNoSerialPorts
	}
	return ports, nil
}

// Links opens the links described by the profile
func (p Profile) Links() driver.Links {
	return driver.Links{
		PPM:      p.PPM.opener(),
		BLDriver: p.BLDriver.opener(),
		BLCtrl:   p.BLCtrl.opener(),
	}
}

func (c SerialConfig) opener() func() (driver.Port, error) {
	if c.Port == "" || c.Port == SerialPortNone {
		return nil
	}

	return func() (driver.Port, error) {
		port, err := serial.Open(c.Port, &serial.Mode{BaudRate: c.BaudRate})
		if err != nil {
			return nil, fmt.Errorf("error opening %s: %w", c.Port, err)
		}
		return port, nil
	}
}

var hostInit = sync.OnceValue(func() error {
	_, err := host.Init()
	return err
})

func (c I2CConfig) opener() func() (i2c.BusCloser, uint16, error) {
	if c.Disabled {
		return nil
	}

	return func() (i2c.BusCloser, uint16, error) {
		if err := hostInit(); err != nil {
			return nil, 0, fmt.Errorf("error initializing host drivers: %w", err)
		}

		b, err := i2creg.Open(c.Bus)
		if err != nil {
			return nil, 0, fmt.Errorf("error opening i2c bus %q: %w", c.Bus, err)
		}
		return b, c.Address, nil
	}
}
