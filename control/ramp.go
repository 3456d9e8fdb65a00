package control

import "time"

const (
	DefaultRampSamples  = 100
	DefaultRampInterval = 20 * time.Millisecond
)

// RampRunner steps through a ramp run while reporting progress.
//
// The run does not yet apply Start, Stop or Steps to the live driver; it
// only paces the samples and reports progress.
type RampRunner struct {
	Samples  int
	Interval time.Duration
}

func NewRampRunner() RampRunner {
	return RampRunner{
		Samples:  DefaultRampSamples,
		Interval: DefaultRampInterval,
	}
}

// Run blocks for Samples * Interval. It cannot be cancelled.
func (r RampRunner) Run(p Progress) {
	defer p.Close()

	if r.Samples > 0 {
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()

		for i := range r.Samples {
			p.SetPercentage(i * 100 / r.Samples)
			<-ticker.C
		}
	}

	p.SetPercentage(100)
}
