package sim

import (
	"github.com/calvinmclean/teststand/driver"
	"periph.io/x/conn/v3/i2c"
)

// Links returns hardware links backed by freshly simulated devices
func Links() driver.Links {
	return driver.Links{
		PPM: func() (driver.Port, error) {
			return NewPPM(), nil
		},
		BLDriver: func() (driver.Port, error) {
			return NewESC(), nil
		},
		BLCtrl: func() (i2c.BusCloser, uint16, error) {
			return NewBLCtrl(driver.BLCtrlAddr), driver.BLCtrlAddr, nil
		},
	}
}
