package ui

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// timer shows the time elapsed since Start until Stop is called
type timer struct {
	showMillis bool
	startTime  time.Time
	mtx        *sync.Mutex
	text       *canvas.Text
	stop       chan struct{}
	stopOnce   sync.Once
}

func newTimer(showMillis bool) *timer {
	t := &timer{
		showMillis: showMillis,
		mtx:        &sync.Mutex{},
		stop:       make(chan struct{}),
	}
	t.text = canvas.NewText(t.format(0), nil)
	return t
}

func (t *timer) format(elapsed time.Duration) string {
	minutes := int(elapsed.Minutes())
	seconds := int(elapsed.Seconds()) % 60
	if t.showMillis {
		millis := int(elapsed.Milliseconds()) % 1000
		return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func (t *timer) elapsed() time.Duration {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return time.Since(t.startTime)
}

// Start resets the timer to start and updates the text until Stop
func (t *timer) Start(start time.Time) {
	t.mtx.Lock()
	t.startTime = start
	t.mtx.Unlock()

	d := time.Second
	if t.showMillis {
		d = 64 * time.Millisecond
	}

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
			}
			text := t.format(t.elapsed())
			fyne.Do(func() {
				t.text.Text = text
				t.text.Refresh()
			})
		}
	}()
}

func (t *timer) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}
