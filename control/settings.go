package control

import (
	"strings"
	"time"
	"unicode"

	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/driver"
)

// Settings is the operator-controlled state of the driver panel
type Settings struct {
	Driver   uint8
	MotorOn  bool
	Mode     teststand.ControlMode
	Setpoint int32
}

func DefaultSettings() Settings {
	return Settings{
		Driver: driver.None,
		Mode:   teststand.ControlModePercentage,
	}
}

// MaxFilenameLength bounds RampSettings.Filename
const MaxFilenameLength = 14

// MaxRampLength bounds RampSettings.Length
const MaxRampLength = 1800 * time.Second

// RampSettings configures the ramp test. Start and Stop use the fixed-point
// scale of the active control mode.
type RampSettings struct {
	Start    int32
	Stop     int32
	Steps    int32
	Length   time.Duration
	Filename string
}

func DefaultRampSettings() RampSettings {
	return RampSettings{
		Stop:     teststand.PercentFull,
		Steps:    10,
		Length:   10 * time.Second,
		Filename: "ramp.csv",
	}
}

// SetFilename stores name without control characters or surrounding
// spaces, truncated to MaxFilenameLength characters. The stored name reads
// back unchanged from a settings file.
func (rs *RampSettings) SetFilename(name string) {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	r := []rune(strings.TrimSpace(name))
	if len(r) > MaxFilenameLength {
		r = r[:MaxFilenameLength]
	}
	rs.Filename = strings.TrimSpace(string(r))
}

// SetLength stores d bounded to [0, MaxRampLength]
func (rs *RampSettings) SetLength(d time.Duration) {
	rs.Length = min(max(d, 0), MaxRampLength)
}
