package rworker

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestJob(t *testing.T) {
	t.Parallel()
	const limit = 3
	var (
		wg      sync.WaitGroup
		running int32
		peak    int32
		done    int32
	)
	rate := make(chan struct{}, limit)
	errCh := make(chan error, 1)
	for i := 0; i < 50; i++ {
		i := i
		Job(&wg, func() error {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			atomic.AddInt32(&running, -1)
			atomic.AddInt32(&done, 1)
			if i%10 == 0 {
				return errors.New("failed")
			}
			return nil
		}, rate, errCh)
	}
	wg.Wait()
	close(errCh)

	if done != 50 {
		t.Errorf("finished jobs, got: %d, expected: 50", done)
	}
	if peak > limit {
		t.Errorf("concurrent jobs, got: %d, expected at most: %d", peak, limit)
	}
	if err := <-errCh; err == nil {
		t.Errorf("first failure must be delivered")
	}
}
