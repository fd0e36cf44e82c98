// Package rworker runs jobs on goroutines bounded by a semaphore channel.
package rworker

import "sync"

// Job runs fn on its own goroutine once a slot in rate is free. An error is
// delivered to errCh only if errCh has room, so with a buffer of one the
// first failure wins.
func Job(wg *sync.WaitGroup, fn func() error, rate chan struct{}, errCh chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		rate <- struct{}{}
		defer func() { <-rate }()
		if err := fn(); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	}()
}
