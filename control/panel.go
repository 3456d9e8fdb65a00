package control

import (
	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/driver"
)

// Widget is a panel control the loop enables, shows and redraws. A redraw
// makes the widget show the current Settings.
type Widget interface {
	SetEnabled(bool)
	SetVisible(bool)
	Redraw(full bool)
}

// Indicator is a readback display field
type Indicator interface {
	Widget
	Set(value int32)
}

// Container hosts the display of the live driver
type Container interface {
	Attach(d driver.Display)
	Redraw(full bool)
}

// Panel holds the widgets the loop manages. Modes and Readback are indexed
// by teststand.ControlMode and teststand.Field.
type Panel struct {
	Driver         Widget
	MotorOn        Widget
	Modes          [3]Widget
	SetpointEntry  Widget
	SetpointSlider Widget
	Ramp           Widget
	Readback       [4]Indicator
	Container      Container
}

// Progress is an open progress indicator
type Progress interface {
	SetPercentage(p int)
	Close()
}

// RampDialog shows the modal ramp dialogs
type RampDialog interface {
	// Configure edits rs until the operator dismisses the form. start is
	// called when the operator chooses to run the ramp.
	Configure(mode teststand.ControlMode, rs *RampSettings, start func())
	Progress(title string) Progress
}
