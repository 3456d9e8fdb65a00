package ui

import (
	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/driver"
	"github.com/calvinmclean/teststand/unit"
)

// modeRange maps a control mode onto its display unit and slider range
type modeRange struct {
	table unit.Table
	// suffix is appended to unitless values
	suffix string
	// max of the slider in display units, factor converts them to fixed-point
	max    float64
	step   float64
	factor float64
}

func rangeFor(m teststand.ControlMode) modeRange {
	switch m {
	case teststand.ControlModeRPM:
		return modeRange{table: m.Unit(), suffix: "rpm", max: driver.BLDriverMaxRPM, step: 100, factor: 1}
	case teststand.ControlModeThrust:
		return modeRange{table: m.Unit(), max: 50, step: 0.1, factor: 1e6}
	default:
		return modeRange{table: m.Unit(), max: 100, step: 1, factor: float64(teststand.Percent)}
	}
}

func (r modeRange) format(v int32, width int) string {
	return unit.Format(v, width, r.table) + r.suffix
}

func (r modeRange) parse(s string) (int32, bool) {
	v, ok := unit.Parse(s, r.table)
	if !ok {
		return 0, false
	}
	return min(max(v, 0), int32(r.max*r.factor)), true
}

func (r modeRange) toSlider(v int32) float64 {
	return min(max(float64(v)/r.factor, 0), r.max)
}

func (r modeRange) fromSlider(v float64) int32 {
	return int32(v * r.factor)
}

func fieldSuffix(f teststand.Field) string {
	if f == teststand.FieldRPM {
		return "rpm"
	}
	return ""
}
