// Package sim simulates the instrument's hardware so the panel can be used
// without any driver attached.
package sim

import (
	"math"
	"sync"
	"time"
)

// Motor is a first-order model of a brushless motor on a 3S battery
type Motor struct {
	mtx     sync.Mutex
	running bool
	target  float64
	rpm     float64
	last    time.Time
	now     func() time.Time

	MaxRPM     float64
	TimeConst  time.Duration
	IdleAmps   float64
	MaxAmps    float64
	BusVolts   float64
	Resistance float64
}

func NewMotor() *Motor {
	return &Motor{
		now:        time.Now,
		MaxRPM:     12000,
		TimeConst:  300 * time.Millisecond,
		IdleAmps:   0.2,
		MaxAmps:    15,
		BusVolts:   12.6,
		Resistance: 0.05,
	}
}

func (m *Motor) advance() {
	now := m.now()
	if !m.last.IsZero() {
		target := 0.0
		if m.running {
			target = m.target
		}
		k := 1 - math.Exp(-float64(now.Sub(m.last))/float64(m.TimeConst))
		m.rpm += (target - m.rpm) * k
	}
	m.last = now
}

// SetRunning switches the bridge
func (m *Motor) SetRunning(on bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.advance()
	m.running = on
}

// SetDuty sets the target speed as a fraction of MaxRPM
func (m *Motor) SetDuty(fraction float64) {
	m.SetRPM(fraction * m.MaxRPM)
}

// SetRPM sets the target speed
func (m *Motor) SetRPM(rpm float64) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.advance()
	m.target = min(max(rpm, 0), m.MaxRPM)
}

// Sample returns speed in rpm, current in A and bus voltage in V
func (m *Motor) Sample() (rpm, amps, volts float64) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.advance()

	load := m.rpm / m.MaxRPM
	amps = m.IdleAmps + m.MaxAmps*load*load
	if m.rpm < 1 {
		amps = 0
	}
	return m.rpm, amps, m.BusVolts - amps*m.Resistance
}
