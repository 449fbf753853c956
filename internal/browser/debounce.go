package browser

import (
	"sync"
	"time"
)

const DefaultQuietPeriod = 500 * time.Millisecond

type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. The default uses time.AfterFunc; tests
// substitute a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// EmitFunc receives an effective search term together with the generation of
// the input that produced it.
type EmitFunc func(term string, gen uint64)

// SearchDebouncer turns raw keystrokes into effective search terms. A term is
// emitted once the input has been quiet for the quiet period, and only if it
// differs from the previously emitted one.
type SearchDebouncer struct {
	quiet time.Duration
	sched Scheduler
	emit  EmitFunc

	mu      sync.Mutex
	timer   Timer
	gen     uint64
	last    string
	stopped bool
}

func NewSearchDebouncer(quiet time.Duration, sched Scheduler, emit EmitFunc) *SearchDebouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	if sched == nil {
		sched = systemScheduler{}
	}
	return &SearchDebouncer{quiet: quiet, sched: sched, emit: emit}
}

// Input records a raw value and restarts the quiet period.
func (d *SearchDebouncer) Input(raw string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.sched.AfterFunc(d.quiet, func() { d.fire(gen, raw) })
}

func (d *SearchDebouncer) fire(gen uint64, raw string) {
	d.mu.Lock()
	// A timer that could not be stopped in time still carries an old gen.
	if d.stopped || gen != d.gen || raw == d.last {
		d.mu.Unlock()
		return
	}
	d.last = raw
	d.timer = nil
	d.mu.Unlock()

	d.emit(raw, gen)
}

// Reset forgets the last emitted term without emitting, e.g. when the
// browsed table changes. It returns the new generation: every later input
// has a greater one, so an emission with a smaller gen predates the reset.
func (d *SearchDebouncer) Reset(term string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.last = term
	return d.gen
}

func (d *SearchDebouncer) Last() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

func (d *SearchDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
