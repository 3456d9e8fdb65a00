package ui

import (
	"errors"
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/calvinmclean/teststand/hardware"
)

// SetupWindow edits the hardware profile before the panel starts
type SetupWindow struct {
	app      fyne.App
	OnSubmit func(hardware.Profile)
}

func NewSetupWindow(app fyne.App) *SetupWindow {
	return &SetupWindow{
		app: app,
	}
}

func (sw *SetupWindow) loadProfileFromPreferences(p *hardware.Profile) {
	prefs := sw.app.Preferences()
	p.PPM.Port = prefs.StringWithFallback("ppmPort", p.PPM.Port)
	p.PPM.BaudRate = prefs.IntWithFallback("ppmBaudRate", p.PPM.BaudRate)
	p.BLDriver.Port = prefs.StringWithFallback("bldriverPort", p.BLDriver.Port)
	p.BLDriver.BaudRate = prefs.IntWithFallback("bldriverBaudRate", p.BLDriver.BaudRate)
	p.BLCtrl.Bus = prefs.StringWithFallback("blctrlBus", p.BLCtrl.Bus)
	p.BLCtrl.Disabled = prefs.BoolWithFallback("blctrlDisabled", p.BLCtrl.Disabled)
}

func (sw *SetupWindow) saveProfileToPreferences(p *hardware.Profile) {
	prefs := sw.app.Preferences()
	prefs.SetString("ppmPort", p.PPM.Port)
	prefs.SetInt("ppmBaudRate", p.PPM.BaudRate)
	prefs.SetString("bldriverPort", p.BLDriver.Port)
	prefs.SetInt("bldriverBaudRate", p.BLDriver.BaudRate)
	prefs.SetString("blctrlBus", p.BLCtrl.Bus)
	prefs.SetBool("blctrlDisabled", p.BLCtrl.Disabled)
}

func (sw *SetupWindow) Show(p *hardware.Profile) {
	window := sw.app.NewWindow("Test Stand - Hardware")
	window.Resize(fyne.NewSize(400, 250))
	window.SetCloseIntercept(func() {
		// Treat window close as cancel
		window.Close()
		sw.app.Quit()
	})
	window.Show()

	sw.loadProfileFromPreferences(p)

	serialPorts, err := hardware.GetSerialPorts()
	if err != nil && !errors.Is(err, hardware.ErrNoSerialPorts) {
		showError(sw.app, window, fmt.Errorf("error getting serial ports: %w", err))
		return
	}
	serialPorts = append(serialPorts, hardware.SerialPortNone)

	ppmPort := widget.NewSelect(serialPorts, nil)
	ppmPort.Bind(binding.BindString(&p.PPM.Port))

	ppmBaudRate := widget.NewEntry()
	ppmBaudRate.Bind(binding.IntToString(binding.BindInt(&p.PPM.BaudRate)))

	bldriverPort := widget.NewSelect(serialPorts, nil)
	bldriverPort.Bind(binding.BindString(&p.BLDriver.Port))

	bldriverBaudRate := widget.NewEntry()
	bldriverBaudRate.Bind(binding.IntToString(binding.BindInt(&p.BLDriver.BaudRate)))

	blctrlBus := widget.NewEntry()
	blctrlBus.SetPlaceHolder("first bus")
	blctrlBus.Bind(binding.BindString(&p.BLCtrl.Bus))

	blctrlDisabled := widget.NewCheck("Disabled", nil)
	blctrlDisabled.Bind(binding.BindBool(&p.BLCtrl.Disabled))

	submitButton := widget.NewButton("Submit", func() {
		sw.saveProfileToPreferences(p)
		if sw.OnSubmit != nil {
			sw.OnSubmit(*p)
		}
		window.Close()
	})

	validateForm := func() {
		if validBaudRate(ppmBaudRate.Text) && validBaudRate(bldriverBaudRate.Text) {
			submitButton.Enable()
		} else {
			submitButton.Disable()
		}
	}

	ppmBaudRate.OnChanged = func(_ string) { validateForm() }
	bldriverBaudRate.OnChanged = func(_ string) { validateForm() }

	validateForm()

	form := container.NewVBox(
		widget.NewCard("PPM", "", container.NewVBox(
			container.NewGridWithColumns(2,
				widget.NewLabel("Serial Port:"),
				ppmPort,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Baud Rate:"),
				ppmBaudRate,
			),
		)),
		widget.NewCard("BLDriver", "", container.NewVBox(
			container.NewGridWithColumns(2,
				widget.NewLabel("Serial Port:"),
				bldriverPort,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Baud Rate:"),
				bldriverBaudRate,
			),
		)),
		widget.NewCard("BLCtrl", "", container.NewGridWithColumns(2,
			blctrlBus,
			blctrlDisabled,
		)),
		container.NewHBox(
			widget.NewButton("Cancel", func() {
				window.Close()
				sw.app.Quit()
			}),
			submitButton,
		),
	)

	window.SetContent(form)
}

func validBaudRate(s string) bool {
	v, err := strconv.Atoi(s)
	return err == nil && v > 0
}

func showError(app fyne.App, window fyne.Window, err error) {
	d := dialog.NewError(err, window)
	d.SetOnClosed(func() {
		app.Quit()
	})
	d.Show()
}
