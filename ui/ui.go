package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/control"
	"github.com/calvinmclean/teststand/driver"
)

// DriverPanel is the fyne window of the driver control panel. It
// implements the panel, display surface and ramp dialogs of a control.Loop.
type DriverPanel struct {
	app    fyne.App
	window fyne.Window
	ctrl   Controller

	// true while settings are copied into widgets
	updating bool

	driverSelect   *widget.Select
	motorCheck     *widget.Check
	modeRadios     [len(teststand.ControlModes)]*widget.RadioGroup
	setpointEntry  *widget.Entry
	setpointLabel  *widget.Label
	setpointSlider *widget.Slider
	rampButton     *widget.Button
	readback       [len(teststand.Fields)]indicator
	displays       *driverContainer
	logs           *LogView

	// OnSave and OnLoad store and restore the configuration file
	OnSave func() error
	OnLoad func() error

	closed    chan struct{}
	closeOnce sync.Once
}

// NewDriverPanel creates the panel window listing the names of drivers
func NewDriverPanel(app fyne.App, drivers driver.Registry) *DriverPanel {
	p := &DriverPanel{
		app:      app,
		window:   app.NewWindow("Test Stand"),
		displays: newDriverContainer(),
		logs:     NewLogView(DefaultLogLines),
		closed:   make(chan struct{}),
	}

	p.driverSelect = widget.NewSelect(drivers.Names(), p.selectDriver)
	p.driverSelect.SetSelectedIndex(int(driver.None))

	p.motorCheck = widget.NewCheck("Motor on", p.toggleMotor)

	for _, m := range teststand.ControlModes {
		radio := widget.NewRadioGroup([]string{m.String()}, func(selected string) {
			p.selectMode(m, selected)
		})
		radio.Horizontal = true
		radio.Required = true
		p.modeRadios[m] = radio
	}

	p.setpointEntry = widget.NewEntry()
	p.setpointEntry.OnSubmitted = p.submitSetpoint

	p.setpointLabel = widget.NewLabel("")
	p.setpointSlider = widget.NewSlider(0, 100)
	p.setpointSlider.OnChanged = func(value float64) {
		if p.ctrl == nil {
			return
		}
		r := rangeFor(p.ctrl.Settings().Mode)
		p.setpointLabel.SetText(strings.TrimSpace(r.format(r.fromSlider(value), 9)))
	}
	p.setpointSlider.OnChangeEnded = p.slideSetpoint

	p.rampButton = widget.NewButton("RUN RAMP", p.openRamp)

	for _, f := range teststand.Fields {
		p.readback[f] = newIndicator(f)
	}

	return p
}

// Bind connects the panel to the loop it controls
func (p *DriverPanel) Bind(ctrl Controller) {
	p.ctrl = ctrl
	fyne.Do(p.showSettings)
}

// Panel returns the widgets managed by the control loop
func (p *DriverPanel) Panel() control.Panel {
	panel := control.Panel{
		Driver:         panelWidget{obj: p.driverSelect, update: p.showSettings},
		MotorOn:        panelWidget{obj: p.motorCheck, update: p.showSettings},
		SetpointEntry:  panelWidget{obj: p.setpointEntry, update: p.showSettings},
		SetpointSlider: panelWidget{obj: p.setpointSlider, update: p.showSettings},
		Ramp:           panelWidget{obj: p.rampButton},
		Container:      p.displays,
	}
	for _, m := range teststand.ControlModes {
		panel.Modes[m] = panelWidget{obj: p.modeRadios[m], update: p.showSettings}
	}
	for _, f := range teststand.Fields {
		panel.Readback[f] = p.readback[f]
	}
	return panel
}

// Surface returns where drivers create their displays
func (p *DriverPanel) Surface() driver.Surface {
	return p.displays
}

// Logs returns the log view shown below the panel
func (p *DriverPanel) Logs() *LogView {
	return p.logs
}

// showSettings copies the loop's settings into the widgets. It must run on
// the fyne goroutine.
func (p *DriverPanel) showSettings() {
	if p.ctrl == nil {
		return
	}
	s := p.ctrl.Settings()
	r := rangeFor(s.Mode)

	p.updating = true
	defer func() { p.updating = false }()

	p.driverSelect.SetSelectedIndex(int(s.Driver))
	p.motorCheck.SetChecked(s.MotorOn)
	for _, m := range teststand.ControlModes {
		if m == s.Mode {
			p.modeRadios[m].SetSelected(m.String())
		} else {
			p.modeRadios[m].SetSelected("")
		}
	}

	p.setpointEntry.SetText(strings.TrimSpace(r.format(s.Setpoint, 9)))
	p.setpointSlider.Max = r.max
	p.setpointSlider.Step = r.step
	p.setpointSlider.SetValue(r.toSlider(s.Setpoint))
	p.setpointLabel.SetText(strings.TrimSpace(r.format(s.Setpoint, 9)))
}

func (p *DriverPanel) content() fyne.CanvasObject {
	modes := container.NewHBox()
	for _, radio := range p.modeRadios {
		modes.Add(radio)
	}

	readback := container.NewVBox()
	for _, i := range p.readback {
		readback.Add(i.label)
	}

	return container.NewVBox(
		container.NewHBox(
			widget.NewLabel("Driver"),
			p.driverSelect,
			p.motorCheck,
			layout.NewSpacer(),
			widget.NewButton("Load", func() { p.runFileAction("loading", p.OnLoad) }),
			widget.NewButton("Save", func() { p.runFileAction("saving", p.OnSave) }),
		),
		modes,
		container.NewGridWithColumns(3,
			widget.NewLabel("Setpoint"),
			p.setpointEntry,
			p.rampButton,
		),
		container.NewBorder(nil, nil, nil, p.setpointLabel, p.setpointSlider),
		container.NewHBox(
			widget.NewCard("Driver", "", p.displays.box),
			widget.NewCard("Readback", "", readback),
		),
		p.logs.Accordion(),
	)
}

func (p *DriverPanel) runFileAction(name string, action func() error) {
	if action == nil {
		return
	}
	go func() {
		err := action()
		if err == nil {
			return
		}
		fyne.Do(func() {
			dialog.ShowError(fmt.Errorf("error %s configuration: %w", name, err), p.window)
		})
	}()
}

// Show opens the panel window. The application quits when ctx is done.
func (p *DriverPanel) Show(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(p.app.Quit)
		case <-p.closed:
		}
	}()

	p.window.SetContent(p.content())
	p.window.SetOnClosed(p.Close)
	p.window.SetMaster()
	p.window.Resize(fyne.NewSize(480, 420))
	p.window.Show()
}

// Close releases dialogs waiting on the operator. It is safe to call more
// than once.
func (p *DriverPanel) Close() {
	p.closeOnce.Do(func() { close(p.closed) })
}
