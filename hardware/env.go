package hardware

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/sirupsen/logrus"
)

// Env is the process configuration read from the environment
type Env struct {
	ConfigFile   string `env:"TESTSTAND_CONFIG" envDefault:"teststand.cfg"`
	HardwareFile string `env:"TESTSTAND_HARDWARE" envDefault:"hardware.yaml"`
	LogLevel     string `env:"TESTSTAND_LOG_LEVEL" envDefault:"info"`
	Demo         bool   `env:"TESTSTAND_DEMO" envDefault:"false"`
}

func EnvFromOS() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("error parsing environment: %w", err)
	}
	return e, nil
}

// Level parses LogLevel
func (e Env) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(e.LogLevel)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q: %w", e.LogLevel, err)
	}
	return level, nil
}
