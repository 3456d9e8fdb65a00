// Package unit renders fixed-point integers as short display strings and
// parses operator input back into them.
package unit

import (
	"math"
	"strconv"
	"strings"
)

// Unit is one display unit. Factor is how many base units make up one of it.
type Unit struct {
	Name   string
	Factor int64
}

// Table is an ordered list of units of the same quantity, smallest first
type Table []Unit

var (
	Current = Table{{"uA", 1}, {"mA", 1000}, {"A", 1000000}}
	Voltage = Table{{"uV", 1}, {"mV", 1000}, {"V", 1000000}}
	Time    = Table{{"us", 1}, {"ms", 1000}, {"s", 1000000}}
	Force   = Table{{"uN", 1}, {"mN", 1000}, {"N", 1000000}}
	// Percent uses 1000000 for 100%
	Percent = Table{{"%", 10000}}
	None    = Table{{"", 1}}
)

// Format renders val right-aligned in exactly width characters using the
// largest unit of t that the value reaches. As many decimals as fit are
// shown. A value that does not fit renders as width dashes.
func Format(val int32, width int, t Table) string {
	if len(t) == 0 || width <= 0 {
		return dashes(width)
	}

	v := int64(val)
	negative := v < 0
	if negative {
		v = -v
	}

	selected := t[0]
	for _, u := range t {
		if v/u.Factor != 0 {
			selected = u
		}
	}

	digits := width - len(selected.Name)
	if negative {
		digits--
	}

	beforeDot := 1
	if intval := v / selected.Factor; intval > 0 {
		beforeDot = len(strconv.FormatInt(intval, 10))
	}
	if beforeDot > digits {
		return dashes(width)
	}

	afterDot := 0
	factor := int64(1)
	for space := digits - 1 - beforeDot; space > 0 && factor < selected.Factor; space-- {
		factor *= 10
		afterDot++
	}

	s := strconv.FormatInt(v*factor/selected.Factor, 10)
	if pad := beforeDot + afterDot - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	if afterDot > 0 {
		s = s[:len(s)-afterDot] + "." + s[len(s)-afterDot:]
	}
	if negative {
		s = "-" + s
	}
	s += selected.Name

	return strings.Repeat(" ", width-len(s)) + s
}

func dashes(width int) string {
	if width <= 0 {
		return ""
	}
	return strings.Repeat("-", width)
}

// maxDecimals bounds the fractional digits Parse takes into account. No
// table resolves more than a millionth of its largest unit.
const maxDecimals = 6

// Parse reads a value such as "-1.25mA" against t. Leading and trailing
// spaces are ignored. A unit suffix is required unless t is None. The
// second return is false when s cannot be read or the value overflows.
func Parse(s string, t Table) (int32, bool) {
	s = strings.TrimLeft(s, " ")
	if s == "" {
		return 0, false
	}

	var (
		value      int64
		sign       int64 = 1
		seenDot    bool
		dotDivider int64 = 1
		decimals   int
		i          int
	)
scan:
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '-':
			if sign == -1 {
				return 0, false
			}
			sign = -1
		case c == '.':
			if seenDot {
				return 0, false
			}
			seenDot = true
		case c >= '0' && c <= '9':
			if seenDot {
				// digits beyond maxDecimals are below any unit's resolution
				if decimals == maxDecimals {
					continue
				}
				decimals++
				dotDivider *= 10
			}
			value = value*10 + int64(c-'0')
			if value > math.MaxInt32*dotDivider*10 {
				return 0, false
			}
		default:
			break scan
		}
	}

	rest := strings.TrimSpace(s[i:])
	if rest == "" {
		if !isNone(t) {
			return 0, false
		}
		return clamp(sign * scale(value, 1, dotDivider))
	}

	for _, u := range t {
		if u.Name != "" && strings.HasPrefix(rest, u.Name) {
			return clamp(sign * scale(value, u.Factor, dotDivider))
		}
	}
	if isNone(t) {
		return clamp(sign * scale(value, 1, dotDivider))
	}
	return 0, false
}

// scale returns value * factor / divider for powers of ten without
// overflowing the intermediate product
func scale(value, factor, divider int64) int64 {
	if factor >= divider {
		return value * (factor / divider)
	}
	return value / (divider / factor)
}

func isNone(t Table) bool {
	return len(t) == 1 && t[0].Name == ""
}

func clamp(v int64) (int32, bool) {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return int32(v), true
}
