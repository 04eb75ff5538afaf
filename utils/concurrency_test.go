package utils

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(4, 0)

	var done int64
	for i := 0; i < 50; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&done, 1)
		})
	}
	pool.Wait()

	if done != 50 {
		t.Errorf("expected 50 completed jobs, got %d", done)
	}
}

func TestWorkerPoolRateLimit(t *testing.T) {
	rateLimitMs := 100
	pool := NewWorkerPool(1, rateLimitMs)

	var timestamps []time.Time
	mu := make(chan struct{}, 1)
	mu <- struct{}{}

	for i := 0; i < 3; i++ {
		pool.Submit(func() {
			<-mu
			timestamps = append(timestamps, time.Now())
			mu <- struct{}{}
		})
	}
	pool.Wait()

	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		min := time.Duration(rateLimitMs) * time.Millisecond
		if gap < min {
			t.Errorf("gap between job %d and %d: %v < minimum %v", i-1, i, gap, min)
		}
	}
}
