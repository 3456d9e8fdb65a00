package driver

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/bus"
	"github.com/calvinmclean/teststand/config"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func blCtrlLink(b i2c.BusCloser) func() (i2c.BusCloser, uint16, error) {
	return func() (i2c.BusCloser, uint16, error) { return b, BLCtrlAddr, nil }
}

func TestBLCtrl(t *testing.T) {
	playback := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: BLCtrlAddr, W: []byte{0}},
			{Addr: BLCtrlAddr, W: []byte{127}},
			{Addr: BLCtrlAddr, W: []byte{127}, R: []byte{12, 255, 40}},
			{Addr: BLCtrlAddr, W: []byte{0}},
		},
	}
	surface := &fakeSurface{}
	log, _ := test.NewNullLogger()

	d, err := NewBLCtrl(Env{Surface: surface, Links: Links{BLCtrl: blCtrlLink(playback)}, Log: log})
	require.NoError(t, err)

	caps := d.Capabilities()
	assert.False(t, caps.OnOff)
	assert.True(t, caps.Modes.Has(teststand.ControlModePercentage))
	assert.False(t, caps.Modes.Has(teststand.ControlModeRPM))
	assert.True(t, caps.Fields.Has(teststand.FieldCurrent))
	assert.False(t, caps.Fields.Has(teststand.FieldVoltage))

	d.SetRunning(true)
	d.SetControl(teststand.ControlModeRPM, 1000)
	d.SetControl(teststand.ControlModePercentage, 500000)
	assert.Equal(t, Readback{Current: 1200000}, d.Readback())

	require.NoError(t, d.Close())
	assert.True(t, surface.displays[0].released)
	assert.Equal(t, len(playback.Ops), playback.Count)
}

func TestBLCtrlBusBusy(t *testing.T) {
	playback := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: BLCtrlAddr, W: []byte{0}},
			{Addr: BLCtrlAddr, W: []byte{0}, R: []byte{5, 255, 40}},
			{Addr: BLCtrlAddr, W: []byte{0}},
		},
	}
	lock := bus.NewMutex()

	d, err := NewBLCtrl(Env{Bus: lock, Links: Links{BLCtrl: blCtrlLink(playback)}})
	require.NoError(t, err)

	expected := Readback{Current: 500000}
	assert.Equal(t, expected, d.Readback())

	require.True(t, lock.TryLock(bus.DefaultTimeout))
	assert.Equal(t, expected, d.Readback())
	assert.Equal(t, uint64(1), lock.Busy())
	lock.Unlock()

	require.NoError(t, d.Close())
}

func TestBLCtrlNotAnswering(t *testing.T) {
	playback := &i2ctest.Playback{DontPanic: true}
	_, err := NewBLCtrl(Env{Links: Links{BLCtrl: blCtrlLink(playback)}})
	assert.Error(t, err)
}

func TestBLCtrlConfig(t *testing.T) {
	playback := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: BLCtrlAddr, W: []byte{0}},
			{Addr: BLCtrlAddr, W: []byte{63}},
			{Addr: BLCtrlAddr, W: []byte{0}},
		},
	}
	log, _ := test.NewNullLogger()
	reg := config.NewRegistry(log)

	d, err := NewBLCtrl(Env{Config: reg, Links: Links{BLCtrl: blCtrlLink(playback)}, Log: log})
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	var buf bytes.Buffer
	require.NoError(t, reg.Save(&buf))
	assert.Equal(t, "# BLCtrl configuration\nBLCtrl::Limit = 1000000\n", buf.String())

	require.NoError(t, reg.Load(context.Background(), strings.NewReader("BLCtrl::Limit = 250000\n")))
	d.SetControl(teststand.ControlModePercentage, 500000)

	require.NoError(t, d.Close())
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, len(playback.Ops), playback.Count)
}

func TestBLCtrlLimitAppliesToRequestedValue(t *testing.T) {
	playback := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: BLCtrlAddr, W: []byte{0}},
			{Addr: BLCtrlAddr, W: []byte{204}},
			{Addr: BLCtrlAddr, W: []byte{127}, R: []byte{0, 255, 40}},
			{Addr: BLCtrlAddr, W: []byte{204}, R: []byte{0, 255, 40}},
			{Addr: BLCtrlAddr, W: []byte{0}},
		},
	}
	log, _ := test.NewNullLogger()
	reg := config.NewRegistry(log)

	d, err := NewBLCtrl(Env{Config: reg, Links: Links{BLCtrl: blCtrlLink(playback)}, Log: log})
	require.NoError(t, err)

	d.SetControl(teststand.ControlModePercentage, 800000)

	require.NoError(t, reg.Load(context.Background(), strings.NewReader("BLCtrl::Limit = 500000\n")))
	d.Readback()

	require.NoError(t, reg.Load(context.Background(), strings.NewReader("BLCtrl::Limit = 1000000\n")))
	d.Readback()

	require.NoError(t, d.Close())
	assert.Equal(t, len(playback.Ops), playback.Count)
}
