//go:build tinygo

package main

import (
	"machine"

	"github.com/calvinmclean/teststand/firmware/ppm"

	"tinygo.org/x/drivers/servo"
)

// ServoConfig has device-level values for setting up the pulse output
type ServoConfig struct {
	Pin machine.Pin
	PWM servo.PWM
}

type serialPort struct{}

func (serialPort) ReadByte() (byte, error) {
	return machine.Serial.ReadByte()
}

func (serialPort) Write(b []byte) (int, error) {
	return machine.Serial.Write(b)
}

func main() {
	servoCfg := ServoConfig{
		PWM: machine.PWM3,
		Pin: machine.GP22,
	}

	s, err := servo.New(servoCfg.PWM, servoCfg.Pin)
	if err != nil {
		panic("error creating servo: " + err.Error())
	}

	ppm.Run(ppm.NewDevice(s, serialPort{}, serialPort{}))
}
