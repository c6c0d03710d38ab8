// Package async runs named tasks on a fixed number of workers.
package async

import (
	"context"
	"sync"
)

// Task is one unit of work identified by Name.
type Task[T any] struct {
	Name    string
	Execute func(ctx context.Context) (T, error)
}

// Result carries the outcome of a task.
type Result[T any] struct {
	Name string
	Data T
	Err  error
}

type Pool[T any] struct {
	workerCount int
}

// NewPool creates a pool with workerCount workers, at least one.
func NewPool[T any](workerCount int) *Pool[T] {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool[T]{workerCount: workerCount}
}

func (p *Pool[T]) worker(ctx context.Context, wg *sync.WaitGroup, tasks <-chan Task[T], results chan<- Result[T]) {
	defer wg.Done()
	for task := range tasks {
		data, err := task.Execute(ctx)
		select {
		case results <- Result[T]{Name: task.Name, Data: data, Err: err}:
		case <-ctx.Done():
			return
		}
	}
}

// Execute runs tasks and returns their results keyed by name, so task names
// must be unique. When ctx is cancelled it returns what finished so far
// together with ctx.Err().
func (p *Pool[T]) Execute(ctx context.Context, tasks []Task[T]) (map[string]Result[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	taskCh := make(chan Task[T])
	resultCh := make(chan Result[T], len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go p.worker(ctx, &wg, taskCh, resultCh)
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make(map[string]Result[T], len(tasks))
	for received := 0; received < len(tasks); received++ {
		select {
		case result := <-resultCh:
			results[result.Name] = result
		case <-ctx.Done():
			wg.Wait()
			return results, ctx.Err()
		}
	}

	wg.Wait()
	return results, nil
}
