package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/control"
	"github.com/calvinmclean/teststand/driver"
	"github.com/calvinmclean/teststand/unit"
)

type disableable interface {
	fyne.CanvasObject
	fyne.Disableable
}

// panelWidget lets the control loop drive a fyne widget from its own
// goroutine. update copies the current settings into the widget.
type panelWidget struct {
	obj    disableable
	update func()
}

var _ control.Widget = panelWidget{}

func (w panelWidget) SetEnabled(enabled bool) {
	fyne.Do(func() {
		if enabled {
			w.obj.Enable()
		} else {
			w.obj.Disable()
		}
	})
}

func (w panelWidget) SetVisible(visible bool) {
	fyne.Do(func() { setVisible(w.obj, visible) })
}

func (w panelWidget) Redraw(full bool) {
	fyne.Do(func() {
		if w.update != nil {
			w.update()
		}
		if full {
			w.obj.Refresh()
		}
	})
}

// indicator shows one readback field
type indicator struct {
	label *widget.Label
	field teststand.Field
}

var _ control.Indicator = indicator{}

func newIndicator(f teststand.Field) indicator {
	i := indicator{label: widget.NewLabel(""), field: f}
	i.label.TextStyle = fyne.TextStyle{Monospace: true}
	i.label.SetText(i.text(0))
	return i
}

func (i indicator) text(v int32) string {
	return i.field.String() + ": " + unit.Format(v, 9, i.field.Unit()) + fieldSuffix(i.field)
}

func (i indicator) Set(v int32) {
	text := i.text(v)
	fyne.Do(func() { i.label.SetText(text) })
}

func (i indicator) SetEnabled(bool) {}

func (i indicator) SetVisible(visible bool) {
	fyne.Do(func() { setVisible(i.label, visible) })
}

func (i indicator) Redraw(bool) {
	fyne.Do(i.label.Refresh)
}

func setVisible(obj fyne.CanvasObject, visible bool) {
	if visible {
		obj.Show()
	} else {
		obj.Hide()
	}
}

// driverContainer hosts the display of the live driver
type driverContainer struct {
	box *fyne.Container
}

var _ control.Container = (*driverContainer)(nil)

func newDriverContainer() *driverContainer {
	return &driverContainer{box: container.NewStack()}
}

func (c *driverContainer) Attach(d driver.Display) {
	dd, ok := d.(*display)
	if !ok {
		return
	}
	fyne.Do(func() {
		c.box.Objects = []fyne.CanvasObject{dd.obj}
		c.box.Refresh()
	})
}

func (c *driverContainer) Redraw(bool) {
	fyne.Do(c.box.Refresh)
}

// NewDisplay creates the text area a driver draws its status into
func (c *driverContainer) NewDisplay(size driver.Size) driver.Display {
	text := widget.NewLabel("")
	text.TextStyle = fyne.TextStyle{Monospace: true}
	return &display{
		container: c,
		text:      text,
		obj:       container.NewGridWrap(fyne.NewSize(float32(size.W), float32(size.H)), text),
	}
}

type display struct {
	container *driverContainer
	text      *widget.Label
	obj       fyne.CanvasObject
}

var _ driver.Display = (*display)(nil)

func (d *display) SetLines(lines ...string) {
	text := strings.Join(lines, "\n")
	fyne.Do(func() { d.text.SetText(text) })
}

// Release detaches the display if it is still shown
func (d *display) Release() {
	fyne.Do(func() {
		box := d.container.box
		for i, obj := range box.Objects {
			if obj == d.obj {
				box.Objects = append(box.Objects[:i], box.Objects[i+1:]...)
				box.Refresh()
				return
			}
		}
	})
}
