// Package ppm is the firmware of the PPM pulse generator. It reads single
// byte commands from the serial port and drives a radio-control pulse train.
package ppm

import (
	"errors"
	"io"
)

type Command struct {
	Flag        byte
	InputSize   uint
	Run         func(Controller, []byte) error
	Description string
}

// Controller is used to control the pulse output
type Controller interface {
	Enable(bool)
	SetPulse(uint16) error
	State() (enabled bool, pulse uint16)

	// I/O
	ReadByte() (byte, error)
	Print(string)
}

var (
	EnableCommand = &Command{
		Flag:      'E',
		InputSize: 1,
		Run: func(c Controller, input []byte) error {
			switch input[0] {
			case '0':
				c.Enable(false)
			case '1':
				c.Enable(true)
			default:
				return errors.New("invalid input: " + string(input))
			}
			return nil
		},
		Description: "Enable or disable the pulse output. Input: '0' or '1'.",
	}
	PulseCommand = &Command{
		Flag:      'P',
		InputSize: 4,
		Run: func(c Controller, input []byte) error {
			var us uint16
			for _, b := range input {
				if b < '0' || b > '9' {
					return errors.New("invalid input: " + string(input))
				}
				us = us*10 + uint16(b-'0')
			}
			return c.SetPulse(us)
		},
		Description: "Set the pulse width in microseconds. Input: 4 digits, 1000-2000.",
	}
	DebugCommand = &Command{
		Flag:      'D',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			enabled, pulse := c.State()
			e := "0"
			if enabled {
				e = "1"
			}
			c.Print("[-] E" + e + " P" + pad4(pulse) + "\r\n")
			return nil
		},
		Description: "Print the current state.",
	}
	HelpCommand = &Command{
		Flag:        'H',
		InputSize:   0,
		Description: "Show all available commands and their descriptions.",
		Run: func(c Controller, b []byte) error {
			c.Print("Available Commands:\r\n")
			for _, cmd := range commands {
				c.Print(string(cmd.Flag) + ": " + cmd.Description + "\r\n")
			}
			return nil
		},
	}
)

func pad4(v uint16) string {
	const digits = "0123456789"
	return string([]byte{
		digits[v/1000%10],
		digits[v/100%10],
		digits[v/10%10],
		digits[v%10],
	})
}

var commands = []*Command{
	EnableCommand,
	PulseCommand,
	DebugCommand,
}

// Run executes commands until the input is exhausted. Bytes that are not
// command flags, such as line endings, are skipped.
func Run(c Controller) {
	cmdMap := map[byte]*Command{
		HelpCommand.Flag: HelpCommand,
	}

	for _, cmd := range commands {
		cmdMap[cmd.Flag] = cmd
	}

	for {
		cmdIn, err := c.ReadByte()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			continue
		}

		cmd, ok := cmdMap[cmdIn]
		if !ok {
			continue
		}

		in := make([]byte, cmd.InputSize)
		for i := 0; i < int(cmd.InputSize); {
			b, err := c.ReadByte()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				continue
			}

			in[i] = b
			i++
		}

		err = cmd.Run(c, in)
		if err != nil {
			c.Print("error: " + err.Error() + "\r\n")
		}
	}
}
