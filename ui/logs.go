package ui

import (
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

// DefaultLogLines is how many entries the log view keeps
const DefaultLogLines = 50

// LogView is a logrus hook that shows recent entries in the panel
type LogView struct {
	max int

	mtx   sync.Mutex
	lines []string

	content *widget.Label
}

var _ logrus.Hook = (*LogView)(nil)

func NewLogView(maxLines int) *LogView {
	return &LogView{
		max:     maxLines,
		content: widget.NewLabel(""),
	}
}

func (v *LogView) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
	}
}

func (v *LogView) Fire(entry *logrus.Entry) error {
	line := fmt.Sprintf("%s %s %s", entry.Time.Format("15:04:05"), strings.ToUpper(entry.Level.String()), entry.Message)
	if err, ok := entry.Data[logrus.ErrorKey].(error); ok {
		line += ": " + err.Error()
	}

	text := v.add(line)
	fyne.Do(func() { v.content.SetText(text) })
	return nil
}

func (v *LogView) add(line string) string {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	v.lines = append(v.lines, line)
	if len(v.lines) > v.max {
		v.lines = v.lines[len(v.lines)-v.max:]
	}
	return strings.Join(v.lines, "\n")
}

// Lines returns the entries currently shown
func (v *LogView) Lines() []string {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	return append([]string(nil), v.lines...)
}

func (v *LogView) Accordion() *widget.Accordion {
	logScroll := container.NewVScroll(v.content)
	logScroll.SetMinSize(fyne.NewSize(300, 100))

	return widget.NewAccordion(
		widget.NewAccordionItem("Logs", logScroll),
	)
}
