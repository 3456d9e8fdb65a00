// Package hardware describes how the instrument's drivers are wired to the
// host and opens the corresponding links.
package hardware

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaudRate = 115200
	// SerialPortNone marks a backend as not connected
	SerialPortNone = "None"
)

// SerialConfig has the values for opening a serial link
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// I2CConfig selects the bus and device address of an I2C backend. An empty
// bus name opens the first bus found.
type I2CConfig struct {
	Disabled bool   `yaml:"disabled"`
	Bus      string `yaml:"bus"`
	Address  uint16 `yaml:"address"`
}

// Profile is the hardware wiring of one instrument
type Profile struct {
	PPM      SerialConfig `yaml:"ppm"`
	BLDriver SerialConfig `yaml:"bldriver"`
	BLCtrl   I2CConfig    `yaml:"blctrl"`
}

func (c *SerialConfig) applyDefaults() {
	if c.Port == "" {
		c.Port = SerialPortNone
	}
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
}

func (p *Profile) applyDefaults() {
	p.PPM.applyDefaults()
	p.BLDriver.applyDefaults()
	if p.BLCtrl.Address == 0 {
		p.BLCtrl.Address = defaultBLCtrlAddr
	}
}

func DefaultProfile() Profile {
	var p Profile
	p.applyDefaults()
	return p
}

// ParseProfile reads a YAML profile, filling in defaults for missing values
func ParseProfile(r io.Reader) (Profile, error) {
	var p Profile
	err := yaml.NewDecoder(r).Decode(&p)
	if err != nil && !errors.Is(err, io.EOF) {
		return Profile{}, fmt.Errorf("error decoding hardware profile: %w", err)
	}
	p.applyDefaults()
	return p, nil
}

// LoadProfile reads the profile at path. A missing file yields the default profile.
func LoadProfile(path string) (Profile, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultProfile(), nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("error opening hardware profile: %w", err)
	}
	defer f.Close()

	return ParseProfile(f)
}

func (p Profile) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("error encoding hardware profile: %w", err)
	}
	return enc.Close()
}

// SaveProfile writes the profile to path
func (p Profile) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating hardware profile: %w", err)
	}

	err = p.Write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
