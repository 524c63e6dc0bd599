package timing

import "time"

// TickerLimiter paces frames on a time.Ticker. Ticks missed while the
// emulator was busy are not made up: a late frame returns at once and the
// next one waits for the following tick.
type TickerLimiter struct {
	ticker *time.Ticker
	period time.Duration
	last   time.Time
	now    func() time.Time
	late   int64
}

func NewTickerLimiter() *TickerLimiter {
	period := FrameDuration()
	return &TickerLimiter{
		ticker: time.NewTicker(period),
		period: period,
		last:   time.Now(),
		now:    time.Now,
	}
}

func (t *TickerLimiter) WaitForNextFrame() {
	if t.now().Sub(t.last) > t.period {
		t.late++
		t.last = t.now()
		return
	}
	t.last = <-t.ticker.C
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.period)
	t.last = t.now()
	t.late = 0
}

// Late counts frames that started behind schedule since the last Reset.
func (t *TickerLimiter) Late() int64 { return t.late }

// Stop releases the ticker. The limiter must not be used afterwards.
func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
