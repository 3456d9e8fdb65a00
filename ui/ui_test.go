package ui

import (
	"errors"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/control"
	"github.com/calvinmclean/teststand/driver"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type post struct {
	event    control.Event
	settings control.Settings
}

type fakeController struct {
	mtx      sync.Mutex
	settings control.Settings
	posts    []post
}

func (c *fakeController) Post(ev control.Event, change func(*control.Settings)) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if change != nil {
		change(&c.settings)
	}
	c.posts = append(c.posts, post{ev, c.settings})
}

func (c *fakeController) Settings() control.Settings {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.settings
}

func (c *fakeController) Drivers() driver.Registry {
	return testDrivers
}

func (c *fakeController) lastPosts() []post {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]post(nil), c.posts...)
}

var testDrivers = driver.Registry{{Name: "None"}, {Name: "PPM"}}

func newTestPanel(t *testing.T) (*DriverPanel, *fakeController) {
	t.Helper()
	ctrl := &fakeController{settings: control.DefaultSettings()}
	p := NewDriverPanel(test.NewTempApp(t), testDrivers)
	p.ctrl = ctrl
	return p, ctrl
}

func TestPanelHandlers(t *testing.T) {
	tests := []struct {
		name     string
		action   func(p *DriverPanel)
		expected []post
	}{
		{
			"SelectDriver",
			func(p *DriverPanel) { p.driverSelect.SetSelected("PPM") },
			[]post{{control.EventDriverChanged, control.Settings{Driver: 1, Mode: teststand.ControlModePercentage}}},
		},
		{
			"UnknownDriver",
			func(p *DriverPanel) { p.selectDriver("Other") },
			nil,
		},
		{
			"ToggleMotor",
			func(p *DriverPanel) { p.toggleMotor(true) },
			[]post{{control.EventMotorToggled, control.Settings{MotorOn: true}}},
		},
		{
			"SelectMode",
			func(p *DriverPanel) { p.selectMode(teststand.ControlModeRPM, "RPM") },
			[]post{{control.EventModeChanged, control.Settings{Mode: teststand.ControlModeRPM}}},
		},
		{
			"DeselectMode",
			func(p *DriverPanel) { p.selectMode(teststand.ControlModeRPM, "") },
			nil,
		},
		{
			"SubmitSetpoint",
			func(p *DriverPanel) { p.submitSetpoint(" 25% ") },
			[]post{{control.EventSetpointChanged, control.Settings{Setpoint: 250000}}},
		},
		{
			"SubmitInvalidSetpoint",
			func(p *DriverPanel) { p.submitSetpoint("fast") },
			nil,
		},
		{
			"SlideSetpoint",
			func(p *DriverPanel) { p.slideSetpoint(40) },
			[]post{{control.EventSetpointChanged, control.Settings{Setpoint: 400000}}},
		},
		{
			"OpenRamp",
			func(p *DriverPanel) { p.openRamp() },
			[]post{{control.EventOpenRampConfig, control.Settings{}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ctrl := newTestPanel(t)
			tt.action(p)
			assert.Equal(t, tt.expected, ctrl.lastPosts())
		})
	}
}

func TestSelectModeKeepsSetpoint(t *testing.T) {
	p, ctrl := newTestPanel(t)
	ctrl.settings = control.Settings{
		Driver:   1,
		Mode:     teststand.ControlModePercentage,
		Setpoint: 50 * teststand.Percent,
	}
	p.showSettings()

	p.selectMode(teststand.ControlModeRPM, "RPM")

	assert.Equal(t, []post{{
		control.EventModeChanged,
		control.Settings{Driver: 1, Mode: teststand.ControlModeRPM, Setpoint: 50 * teststand.Percent},
	}}, ctrl.lastPosts())
	assert.InDelta(t, 50000, p.setpointSlider.Value, 0.001)
}

func TestShowSettingsDoesNotPost(t *testing.T) {
	p, ctrl := newTestPanel(t)
	ctrl.settings = control.Settings{
		Driver:   1,
		MotorOn:  true,
		Mode:     teststand.ControlModeRPM,
		Setpoint: 3000,
	}

	p.showSettings()

	assert.Empty(t, ctrl.lastPosts())
	assert.Equal(t, "PPM", p.driverSelect.Selected)
	assert.True(t, p.motorCheck.Checked)
	assert.Equal(t, "", p.modeRadios[teststand.ControlModePercentage].Selected)
	assert.Equal(t, "RPM", p.modeRadios[teststand.ControlModeRPM].Selected)
	assert.Equal(t, "3000rpm", p.setpointEntry.Text)
	assert.InDelta(t, 3000, p.setpointSlider.Value, 0.001)
	assert.InDelta(t, 50000, p.setpointSlider.Max, 0.001)
}

func TestRampForm(t *testing.T) {
	rs := control.DefaultRampSettings()
	form := newRampForm(teststand.ControlModePercentage, rs)

	assert.Equal(t, "0.0000%", form.start.Text)
	assert.Equal(t, "10", form.steps.Text)

	form.start.SetText("10%")
	form.steps.SetText("0")
	form.length.SetText("5s")
	form.filename.SetText("a-very-long-ramp-name.csv")

	edited := rs
	form.apply(&edited)

	assert.Equal(t, int32(100000), edited.Start)
	assert.Equal(t, rs.Stop, edited.Stop)
	assert.Equal(t, rs.Steps, edited.Steps)
	assert.Equal(t, 5*time.Second, edited.Length)
	assert.Equal(t, "a-very-long-ra", edited.Filename)

	assert.Error(t, form.steps.Validate())
	assert.NoError(t, form.start.Validate())
}

func TestLogView(t *testing.T) {
	test.NewTempApp(t)
	v := NewLogView(2)

	logger, _ := logtest.NewNullLogger()
	logger.AddHook(v)

	logger.Info("first")
	logger.Debug("hidden")
	logger.WithError(errors.New("boom")).Warn("second")
	logger.Error("third")

	lines := v.Lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "WARNING second: boom")
	assert.Contains(t, lines[1], "ERROR third")
}
