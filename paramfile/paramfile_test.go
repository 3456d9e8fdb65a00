package paramfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestWrite(t *testing.T) {
	name := "BLDriver"
	mode := int8(1)
	setpoint := int32(-500000)

	var buf bytes.Buffer
	require.NoError(t, Comment(&buf, "Driver configuration"))
	require.NoError(t, Write(&buf,
		String(Key("Driver", "Driver"), &name),
		Int8(Key("Driver", "ControlMode"), &mode),
		Int32(Key("Driver", "Setpoint"), &setpoint),
	))

	expected := `# Driver configuration
Driver::Driver = BLDriver
Driver::ControlMode = 1
Driver::Setpoint = -500000
`
	assert.Equal(t, expected, buf.String())
}

func TestWriteInvalidKey(t *testing.T) {
	s := ""
	assert.Error(t, Write(&bytes.Buffer{}, String("a=b", &s)))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected Table
		err      bool
	}{
		{
			"Basic",
			"# header\nDriver::Driver = PPM\n\nDriver::Setpoint=42\n",
			Table{"Driver::Driver": "PPM", "Driver::Setpoint": "42"},
			false,
		},
		{
			"LaterKeyWins",
			"A::B = 1\nA::B = 2\n",
			Table{"A::B": "2"},
			false,
		},
		{
			"EmptyValue",
			"A::B =\n",
			Table{"A::B": ""},
			false,
		},
		{
			"ValueWithEquals",
			"A::B = x=y\n",
			Table{"A::B": "x=y"},
			false,
		},
		{
			"SyntaxError",
			"A::B = 1\nnonsense\n",
			nil,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse(strings.NewReader(tt.in))
			if tt.err {
				assert.ErrorIs(t, err, ErrSyntax)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, table)
		})
	}
}

func TestRead(t *testing.T) {
	table := Table{
		"S::Name":  "hello world",
		"S::Small": "-12",
		"S::Int":   "123456",
		"S::Big":   "not a number",
	}

	name := "unchanged"
	small := int8(0)
	i := int32(0)
	big := int32(7)
	missing := int32(99)

	err := table.Read(
		String("S::Name", &name),
		Int8("S::Small", &small),
		Int32("S::Int", &i),
		Int32("S::Big", &big),
		Int32("S::Missing", &missing),
	)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)

	assert.Equal(t, "hello world", name)
	assert.Equal(t, int8(-12), small)
	assert.Equal(t, int32(123456), i)
	assert.Equal(t, int32(7), big)
	assert.Equal(t, int32(99), missing)
}

func TestInt8OutOfRange(t *testing.T) {
	v := int8(3)
	err := Table{"K": "300"}.Read(Int8("K", &v))
	assert.Error(t, err)
	assert.Equal(t, int8(3), v)
}
