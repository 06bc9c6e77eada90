package libol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPromise(t *testing.T) {
	p := &Promise{
		MaxTry: 3,
		First:  time.Millisecond,
		MinInt: time.Millisecond,
		MaxInt: 2 * time.Millisecond,
	}
	err := p.Do(func() error {
		return NewErr("fail %d", p.Count)
	})
	assert.EqualError(t, err, "fail 3", "be the same.")
	assert.Equal(t, 3, p.Count, "be the same.")

	p = &Promise{MaxTry: 5, First: time.Millisecond, MinInt: time.Millisecond, MaxInt: time.Millisecond}
	err = p.Do(func() error {
		if p.Count < 2 {
			return NewErr("not yet")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, p.Count, "be the same.")
}

func TestGo(t *testing.T) {
	done := make(chan bool, 1)
	Go(func() {
		done <- true
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Go did not run")
	}
}
