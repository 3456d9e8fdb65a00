package control

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Event is a set of conditions the control loop reacts to. Posting the
// same event several times before the loop wakes is handled once.
type Event uint8

const (
	EventDriverChanged Event = 1 << iota
	EventModeChanged
	EventMotorToggled
	EventSetpointChanged
	EventOpenRampConfig
	EventRunRamp
)

// SettingsEvents are the events affected by restoring Settings
const SettingsEvents = EventDriverChanged | EventModeChanged | EventMotorToggled | EventSetpointChanged

var eventNames = []struct {
	e    Event
	name string
}{
	{EventDriverChanged, "DriverChanged"},
	{EventModeChanged, "ModeChanged"},
	{EventMotorToggled, "MotorToggled"},
	{EventSetpointChanged, "SetpointChanged"},
	{EventOpenRampConfig, "OpenRampConfig"},
	{EventRunRamp, "RunRamp"},
}

func (e Event) Has(o Event) bool {
	return e&o == o
}

func (e Event) String() string {
	if e == 0 {
		return "None"
	}

	var names []string
	for _, n := range eventNames {
		if e.Has(n.e) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// ErrNotDrained is returned by Sync when the loop did not take the
// acknowledgments in time
var ErrNotDrained = errors.New("control loop did not drain events")

// ackBackoff is the delay between attempts to post an acknowledgment
const ackBackoff = 10 * time.Millisecond

// notifier is the single mailbox between producers and the control loop.
// Settings changes are applied under its lock together with the event bits,
// so the loop sees the new values when it takes the events.
type notifier struct {
	mtx      sync.Mutex
	pending  Event
	notified bool
	settings Settings
	ramp     RampSettings
	wake     chan struct{}
}

func newNotifier() *notifier {
	return &notifier{
		settings: DefaultSettings(),
		ramp:     DefaultRampSettings(),
		wake:     make(chan struct{}, 1),
	}
}

func (n *notifier) signal() {
	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// post applies change and adds ev to the pending set
func (n *notifier) post(ev Event, change func(*Settings)) {
	n.mtx.Lock()
	if change != nil {
		change(&n.settings)
	}
	n.pending |= ev
	n.notified = true
	n.mtx.Unlock()

	n.signal()
}

// tryAck posts an empty notification unless one is already pending
func (n *notifier) tryAck() bool {
	n.mtx.Lock()
	if n.notified {
		n.mtx.Unlock()
		return false
	}
	n.notified = true
	n.mtx.Unlock()

	n.signal()
	return true
}

// take clears the pending set and returns it with the settings it applies to
func (n *notifier) take() (Event, Settings) {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	ev := n.pending
	n.pending = 0
	n.notified = false
	return ev, n.settings
}

// wait blocks until a notification arrives, timeout passes or ctx is done
func (n *notifier) wait(ctx context.Context, timeout time.Duration) (Event, Settings) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-n.wake:
	case <-timer.C:
	case <-ctx.Done():
	}
	return n.take()
}

func (n *notifier) update(change func(*Settings)) Settings {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	change(&n.settings)
	return n.settings
}

func (n *notifier) snapshot() (Settings, RampSettings) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return n.settings, n.ramp
}

func (n *notifier) setRamp(rs RampSettings) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	n.ramp = rs
}

// sync posts two acknowledgments, each retried until the loop has taken
// the previous notification. Once both are accepted the loop has finished
// handling everything posted before sync was called.
func (n *notifier) sync(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for range 2 {
		for !n.tryAck() {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", ErrNotDrained, ctx.Err())
			case <-time.After(ackBackoff):
			}
		}
	}
	return nil
}
