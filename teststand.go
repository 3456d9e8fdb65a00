// Package teststand holds the quantities shared by the drivers and the
// control panel of the motor test stand.
package teststand

import "github.com/calvinmclean/teststand/unit"

// ControlMode is the quantity a driver setpoint is expressed in
type ControlMode uint8

const (
	ControlModePercentage ControlMode = iota
	ControlModeRPM
	ControlModeThrust
)

// ControlModes lists every mode in panel order
var ControlModes = [...]ControlMode{ControlModePercentage, ControlModeRPM, ControlModeThrust}

func (cm ControlMode) String() string {
	switch cm {
	case ControlModePercentage:
		return "Percentage"
	case ControlModeRPM:
		return "RPM"
	case ControlModeThrust:
		return "Thrust"
	default:
		return "Unknown"
	}
}

// Unit returns the table setpoints of this mode are displayed with
func (cm ControlMode) Unit() unit.Table {
	switch cm {
	case ControlModeRPM:
		return unit.None
	case ControlModeThrust:
		return unit.Force
	default:
		return unit.Percent
	}
}

// Valid reports whether cm is one of the known modes
func (cm ControlMode) Valid() bool {
	return cm <= ControlModeThrust
}

// Field is a telemetry value a driver can report
type Field uint8

const (
	FieldCurrent Field = iota
	FieldVoltage
	FieldRPM
	FieldThrust
)

// Fields lists every readback field in panel order
var Fields = [...]Field{FieldCurrent, FieldVoltage, FieldRPM, FieldThrust}

func (f Field) String() string {
	switch f {
	case FieldCurrent:
		return "Current"
	case FieldVoltage:
		return "Voltage"
	case FieldRPM:
		return "RPM"
	case FieldThrust:
		return "Thrust"
	default:
		return "Unknown"
	}
}

// Unit returns the table values of this field are displayed with
func (f Field) Unit() unit.Table {
	switch f {
	case FieldCurrent:
		return unit.Current
	case FieldVoltage:
		return unit.Voltage
	case FieldThrust:
		return unit.Force
	default:
		return unit.None
	}
}

// Fixed-point scales. Percentages are stored so that PercentFull is 100%,
// currents in uA, voltages in uV and forces in uN. Speeds are plain rpm.
const (
	PercentFull int32 = 1000000
	Percent     int32 = PercentFull / 100
)
