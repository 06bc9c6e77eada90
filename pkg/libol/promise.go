package libol

import "time"

// Promise retries a call with a growing delay until it succeeds.
type Promise struct {
	Count  int
	MaxTry int           // zero retries forever.
	First  time.Duration // the delay time.
	MinInt time.Duration // added to the delay after each failure.
	MaxInt time.Duration // the max delay time.
}

// Do returns nil on the first success, otherwise the last error once
// MaxTry calls have failed.
func (p *Promise) Do(call func() error) error {
	delay := p.First
	for {
		p.Count++
		err := call()
		if err == nil {
			return nil
		}
		if p.MaxTry > 0 && p.Count >= p.MaxTry {
			return err
		}
		time.Sleep(delay)
		if delay < p.MaxInt {
			delay += p.MinInt
		}
		if delay > p.MaxInt {
			delay = p.MaxInt
		}
	}
}

func (p *Promise) Go(call func() error) {
	Go(func() {
		if err := p.Do(call); err != nil {
			Error("Promise.Go %s", err)
		}
	})
}
