package control

import (
	"fmt"
	"sync"

	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/driver"
)

type fakeWidget struct {
	mtx     sync.Mutex
	enabled bool
	visible bool
	value   int32
	redraws []bool
}

func newFakeWidget() *fakeWidget {
	return &fakeWidget{enabled: true, visible: true}
}

func (w *fakeWidget) SetEnabled(e bool) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	w.enabled = e
}

func (w *fakeWidget) SetVisible(v bool) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	w.visible = v
}

func (w *fakeWidget) Redraw(full bool) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	w.redraws = append(w.redraws, full)
}

func (w *fakeWidget) Set(v int32) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	w.value = v
}

func (w *fakeWidget) state() (enabled, visible bool, value int32) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.enabled, w.visible, w.value
}

type fakeContainer struct {
	mtx      sync.Mutex
	attached []driver.Display
	redraws  int
}

func (c *fakeContainer) Attach(d driver.Display) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.attached = append(c.attached, d)
}

func (c *fakeContainer) Redraw(bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.redraws++
}

type fakePanel struct {
	Panel
	driver    *fakeWidget
	motorOn   *fakeWidget
	modes     [3]*fakeWidget
	entry     *fakeWidget
	slider    *fakeWidget
	ramp      *fakeWidget
	readback  [4]*fakeWidget
	container *fakeContainer
}

func newFakePanel() *fakePanel {
	p := &fakePanel{
		driver:    newFakeWidget(),
		motorOn:   newFakeWidget(),
		entry:     newFakeWidget(),
		slider:    newFakeWidget(),
		ramp:      newFakeWidget(),
		container: &fakeContainer{},
	}
	p.Panel = Panel{
		Driver:         p.driver,
		MotorOn:        p.motorOn,
		SetpointEntry:  p.entry,
		SetpointSlider: p.slider,
		Ramp:           p.ramp,
		Container:      p.container,
	}
	for i := range p.modes {
		p.modes[i] = newFakeWidget()
		p.Panel.Modes[i] = p.modes[i]
	}
	for i := range p.readback {
		p.readback[i] = newFakeWidget()
		p.Panel.Readback[i] = p.readback[i]
	}
	return p
}

// controls returns every widget whose enablement follows the driver
func (p *fakePanel) controls() []*fakeWidget {
	return []*fakeWidget{p.motorOn, p.modes[0], p.modes[1], p.modes[2], p.entry, p.slider, p.ramp}
}

// callLog records driver calls in order across every fake driver
type callLog struct {
	mtx   sync.Mutex
	calls []string
}

func (c *callLog) add(format string, args ...any) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
}

func (c *callLog) get() []string {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *callLog) reset() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.calls = nil
}

type fakeDisplay struct{ name string }

func (fakeDisplay) SetLines(...string) {}
func (fakeDisplay) Release()           {}

type fakeDriver struct {
	name     string
	caps     driver.Capabilities
	readback driver.Readback
	log      *callLog
	display  *fakeDisplay
}

func (d *fakeDriver) Capabilities() driver.Capabilities { return d.caps }
func (d *fakeDriver) SetRunning(on bool)                { d.log.add("%s.SetRunning(%t)", d.name, on) }
func (d *fakeDriver) SetControl(m teststand.ControlMode, v int32) {
	d.log.add("%s.SetControl(%s, %d)", d.name, m, v)
}
func (d *fakeDriver) Readback() driver.Readback { return d.readback }
func (d *fakeDriver) Display() driver.Display   { return d.display }
func (d *fakeDriver) Close() error {
	d.log.add("%s.Close()", d.name)
	return nil
}

func fakeFactory(name string, caps driver.Capabilities, rb driver.Readback, log *callLog) driver.Factory {
	return func(driver.Env) (driver.Driver, error) {
		log.add("new %s", name)
		return &fakeDriver{name: name, caps: caps, readback: rb, log: log, display: &fakeDisplay{name}}, nil
	}
}

var (
	allModes = driver.Modes(teststand.ControlModePercentage, teststand.ControlModeRPM, teststand.ControlModeThrust)
	allCaps  = driver.Capabilities{
		OnOff:  true,
		Modes:  allModes,
		Fields: driver.Fields(teststand.FieldCurrent, teststand.FieldVoltage, teststand.FieldRPM, teststand.FieldThrust),
	}
	percentCaps = driver.Capabilities{
		OnOff:  true,
		Modes:  driver.Modes(teststand.ControlModePercentage),
		Fields: driver.Fields(teststand.FieldCurrent, teststand.FieldVoltage),
	}
	rpmOnlyCaps = driver.Capabilities{
		Modes:  driver.Modes(teststand.ControlModeRPM),
		Fields: driver.Fields(teststand.FieldRPM),
	}
)

func fakeRegistry(log *callLog) driver.Registry {
	return driver.Registry{
		{Name: "None"},
		{Name: "Full", New: fakeFactory("Full", allCaps, driver.Readback{Current: 1, Voltage: 2, RPM: 3, Thrust: 4}, log)},
		{Name: "Percent", New: fakeFactory("Percent", percentCaps, driver.Readback{Current: 10, Voltage: 20}, log)},
		{Name: "RPMOnly", New: fakeFactory("RPMOnly", rpmOnlyCaps, driver.Readback{RPM: 300}, log)},
		{Name: "Broken", New: func(driver.Env) (driver.Driver, error) {
			log.add("new Broken")
			return nil, fmt.Errorf("no hardware")
		}},
	}
}

type fakeProgress struct {
	mtx    sync.Mutex
	values []int
	closed bool
}

func (p *fakeProgress) SetPercentage(v int) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.values = append(p.values, v)
}

func (p *fakeProgress) Close() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.closed = true
}

type fakeDialog struct {
	mtx        sync.Mutex
	modes      []teststand.ControlMode
	configure  func(rs *RampSettings, start func())
	progresses []*fakeProgress
}

func (d *fakeDialog) Configure(mode teststand.ControlMode, rs *RampSettings, start func()) {
	d.mtx.Lock()
	d.modes = append(d.modes, mode)
	configure := d.configure
	d.mtx.Unlock()

	if configure != nil {
		configure(rs, start)
	}
}

func (d *fakeDialog) Progress(string) Progress {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	p := &fakeProgress{}
	d.progresses = append(d.progresses, p)
	return p
}
