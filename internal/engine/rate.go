package engine

import "time"

// rateReporter counts ticks and reports the measured rate once per interval.
type rateReporter struct {
	interval time.Duration
	clock    func() time.Time
	start    time.Time
	count    int
}

func newRateReporter(interval time.Duration, clock func() time.Time) *rateReporter {
	return &rateReporter{interval: interval, clock: clock, start: clock()}
}

// increment records one tick and returns the rate in Hz when an interval has elapsed.
func (r *rateReporter) increment() (float64, bool) {
	r.count++
	now := r.clock()
	elapsed := now.Sub(r.start)
	if elapsed < r.interval {
		return 0, false
	}
	rate := float64(r.count) / elapsed.Seconds()
	r.start = now
	r.count = 0
	return rate, true
}
