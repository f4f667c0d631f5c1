// Package concurrency holds a small fan-out helper.
package concurrency

import (
	"context"
	"sync"
)

type WorkerFn func(ctx context.Context, task int) error

// Run hands task indices 0..tasks-1 to at most workers goroutines and waits.
// The first error cancels the remaining tasks and is returned.
func Run(ctx context.Context, workers, tasks int, fn WorkerFn) error {
	if tasks <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > tasks {
		workers = tasks
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				if err := fn(ctx, task); err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
				}
			}
		}()
	}

feed:
	for task := 0; task < tasks; task++ {
		select {
		case jobs <- task:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
