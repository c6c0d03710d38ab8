package async_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficlens/internal/pkg/async"
)

func TestExecute(t *testing.T) {
	var calls atomic.Int32
	tasks := make([]async.Task[int], 10)
	for i := range tasks {
		n := i
		tasks[i] = async.Task[int]{
			Name: fmt.Sprintf("task-%d", n),
			Execute: func(context.Context) (int, error) {
				calls.Add(1)
				return n * n, nil
			},
		}
	}

	results, err := async.NewPool[int](3).Execute(context.Background(), tasks)
	require.NoError(t, err)
	assert.Len(t, results, 10)
	assert.Equal(t, int32(10), calls.Load())
	assert.Equal(t, 49, results["task-7"].Data)
}

func TestExecuteKeepsTaskErrors(t *testing.T) {
	boom := errors.New("boom")
	tasks := []async.Task[string]{
		{Name: "ok", Execute: func(context.Context) (string, error) { return "fine", nil }},
		{Name: "bad", Execute: func(context.Context) (string, error) { return "", boom }},
	}

	results, err := async.NewPool[string](0).Execute(context.Background(), tasks)
	require.NoError(t, err)
	assert.Equal(t, "fine", results["ok"].Data)
	assert.ErrorIs(t, results["bad"].Err, boom)
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := []async.Task[int]{
		{Name: "a", Execute: func(context.Context) (int, error) { return 1, nil }},
	}
	_, err := async.NewPool[int](2).Execute(ctx, tasks)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteNoTasks(t *testing.T) {
	results, err := async.NewPool[int](2).Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
