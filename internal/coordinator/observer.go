package coordinator

import "time"

// Observer receives fetch cycle events. Calls are made from the session
// goroutine and must not block.
type Observer interface {
	// CycleStarted is called when generation gen is issued.
	CycleStarted(gen uint64)
	// CycleCompleted is called when the current generation resolves.
	// err is the fetch failure, if any; subscribers only see an empty page.
	CycleCompleted(gen uint64, duration time.Duration, err error)
	// CycleDiscarded is called when a superseded generation resolves.
	CycleDiscarded(gen uint64)
}

// NoopObserver ignores every event.
type NoopObserver struct{}

func (NoopObserver) CycleStarted(uint64)                        {}
func (NoopObserver) CycleCompleted(uint64, time.Duration, error) {}
func (NoopObserver) CycleDiscarded(uint64)                      {}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) CycleStarted(gen uint64) {
	for _, o := range m {
		o.CycleStarted(gen)
	}
}

func (m MultiObserver) CycleCompleted(gen uint64, duration time.Duration, err error) {
	for _, o := range m {
		o.CycleCompleted(gen, duration, err)
	}
}

func (m MultiObserver) CycleDiscarded(gen uint64) {
	for _, o := range m {
		o.CycleDiscarded(gen)
	}
}
