package unit

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		val      int32
		width    int
		table    Table
		expected string
	}{
		{"HalfPercent", 500000, 7, Percent, "50.000%"},
		{"FullPercent", 1000000, 7, Percent, "100.00%"},
		{"ZeroPercent", 0, 7, Percent, "0.0000%"},
		{"Milliamps", 1500, 7, Current, "1.500mA"},
		{"Amps", 12345678, 7, Current, "12.345A"},
		{"Negative", -2500000, 7, Voltage, "-2.500V"},
		{"Padded", 7, 6, None, "     7"},
		{"NoDecimalsForBaseUnit", 12, 6, Current, "  12uA"},
		{"Seconds", 90000000, 6, Time, "90.00s"},
		{"Overflow", 1000000, 3, Percent, "---"},
		{"OverflowNone", 123456, 4, None, "----"},
		{"EmptyTable", 1, 4, nil, "----"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Format(tt.val, tt.width, tt.table)
			assert.Equal(t, tt.expected, out)
			assert.Len(t, out, tt.width)
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		table    Table
		expected int32
		ok       bool
	}{
		{"Percent", "50%", Percent, 500000, true},
		{"PercentDecimal", " 12.5 %", Percent, 125000, true},
		{"Milliamps", "1.5mA", Current, 1500, true},
		{"Amps", "2A", Current, 2000000, true},
		{"NegativeVolts", "-3.3V", Voltage, -3300000, true},
		{"Seconds", "30s", Time, 30000000, true},
		{"Milliseconds", "20ms", Time, 20000, true},
		{"NoneWithoutSuffix", "1234", None, 1234, true},
		{"NoneDecimal", "12.5", None, 12, true},
		{"MissingUnit", "12", Current, 0, false},
		{"UnknownUnit", "12x", Current, 0, false},
		{"OnlySpaces", "   ", None, 0, false},
		{"DoubleDot", "1.2.3V", Voltage, 0, false},
		{"DoubleMinus", "--1V", Voltage, 0, false},
		{"Overflow", "5000A", Current, 0, false},
		{"LongFraction", "0." + strings.Repeat("0", 63) + "5%", Percent, 0, true},
		{"LongFractionMilliamps", "1." + strings.Repeat("0", 70) + "9mA", Current, 1000, true},
		{"MicroResolution", "12.3456789A", Current, 12345678, true},
		{"LongIntegerAndFraction", "2147.483647A", Current, 2147483647, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Parse(tt.in, tt.table)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestFormatParse(t *testing.T) {
	for _, v := range []int32{0, 1, 999, 250000, 1000000, math.MaxInt32 / 1000} {
		s := Format(v, 9, Current)
		got, ok := Parse(s, Current)
		assert.True(t, ok, s)
		assert.InDelta(t, v, got, float64(v)/1000+1, s)
	}
}
