package ui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/calvinmclean/teststand"
	"github.com/calvinmclean/teststand/control"
	"github.com/calvinmclean/teststand/unit"
)

var errInvalidValue = errors.New("invalid value")

var _ control.RampDialog = (*DriverPanel)(nil)

// rampForm holds the entries of the ramp configuration form
type rampForm struct {
	start, stop, steps, length, filename *widget.Entry
	mode                                 modeRange
}

func newRampForm(mode teststand.ControlMode, rs control.RampSettings) *rampForm {
	f := &rampForm{mode: rangeFor(mode)}

	f.start = parsedEntry(f.mode.format(rs.Start, 9), f.mode.parse)
	f.stop = parsedEntry(f.mode.format(rs.Stop, 9), f.mode.parse)
	f.steps = parsedEntry(strconv.Itoa(int(rs.Steps)), func(s string) (int32, bool) {
		v, ok := unit.Parse(s, unit.None)
		return v, ok && v > 0
	})
	f.length = parsedEntry(unit.Format(int32(rs.Length/time.Microsecond), 7, unit.Time), func(s string) (int32, bool) {
		return unit.Parse(s, unit.Time)
	})

	f.filename = widget.NewEntry()
	f.filename.SetText(rs.Filename)
	f.filename.Validator = func(s string) error {
		if s == "" {
			return errInvalidValue
		}
		return nil
	}
	return f
}

func parsedEntry(text string, parse func(string) (int32, bool)) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strings.TrimLeft(text, " "))
	e.Validator = func(s string) error {
		if _, ok := parse(s); !ok {
			return errInvalidValue
		}
		return nil
	}
	return e
}

func (f *rampForm) items() []*widget.FormItem {
	return []*widget.FormItem{
		widget.NewFormItem("Start", f.start),
		widget.NewFormItem("Stop", f.stop),
		widget.NewFormItem("Steps", f.steps),
		widget.NewFormItem("Length", f.length),
		widget.NewFormItem("Filename", f.filename),
	}
}

// apply copies every valid entry into rs
func (f *rampForm) apply(rs *control.RampSettings) {
	if v, ok := f.mode.parse(f.start.Text); ok {
		rs.Start = v
	}
	if v, ok := f.mode.parse(f.stop.Text); ok {
		rs.Stop = v
	}
	if v, ok := unit.Parse(f.steps.Text, unit.None); ok && v > 0 {
		rs.Steps = v
	}
	if v, ok := unit.Parse(f.length.Text, unit.Time); ok {
		rs.SetLength(time.Duration(v) * time.Microsecond)
	}
	if f.filename.Text != "" {
		rs.SetFilename(f.filename.Text)
	}
}

// Configure shows the ramp form and blocks until it is dismissed or the
// panel is closed. Edits are kept when the operator aborts.
func (p *DriverPanel) Configure(mode teststand.ControlMode, rs *control.RampSettings, start func()) {
	type result struct {
		rs control.RampSettings
		ok bool
	}
	initial := *rs
	done := make(chan result, 1)

	fyne.Do(func() {
		form := newRampForm(mode, initial)
		d := dialog.NewForm("Ramp", "Start", "Abort", form.items(), func(ok bool) {
			edited := initial
			form.apply(&edited)
			done <- result{edited, ok}
		}, p.window)
		d.Show()
	})

	select {
	case r := <-done:
		*rs = r.rs
		if r.ok {
			start()
		}
	case <-p.closed:
	}
}

type progress struct {
	bar    *widget.ProgressBar
	timer  *timer
	dialog dialog.Dialog
}

var _ control.Progress = (*progress)(nil)

// Progress shows a progress bar with the elapsed time until Close
func (p *DriverPanel) Progress(title string) control.Progress {
	pr := &progress{
		bar:   widget.NewProgressBar(),
		timer: newTimer(true),
	}
	pr.dialog = dialog.NewCustomWithoutButtons(title, container.NewVBox(pr.bar, pr.timer.text), p.window)

	fyne.Do(pr.dialog.Show)
	pr.timer.Start(time.Now())
	return pr
}

func (pr *progress) SetPercentage(percent int) {
	fyne.Do(func() { pr.bar.SetValue(float64(percent) / 100) })
}

func (pr *progress) Close() {
	pr.timer.Stop()
	fyne.Do(pr.dialog.Hide)
}
