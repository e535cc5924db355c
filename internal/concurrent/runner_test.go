package concurrent

import (
	"context"
	"errors"
	"testing"
)

func TestRunAllPreservesOrderAndPartitionsErrors(t *testing.T) {
	tasks := make([]Task[int], 10)
	for i := 0; i < 10; i++ {
		i := i
		tasks[i] = func(ctx context.Context) (int, error) {
			if i%3 == 0 {
				return 0, errors.New("boom")
			}
			return i * i, nil
		}
	}

	results := RunAll(context.Background(), 4, tasks)
	if len(results) != len(tasks) {
		t.Fatalf("got %d results, want %d", len(results), len(tasks))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("results[%d].Index = %d, want %d", i, r.Index, i)
		}
	}

	oks, errs := Partition(results)
	if len(oks)+len(errs) != len(tasks) {
		t.Fatalf("|oks|+|errs| = %d, want %d", len(oks)+len(errs), len(tasks))
	}
	if len(errs) != 4 { // indices 0,3,6,9
		t.Errorf("got %d errors, want 4", len(errs))
	}
}

func TestRunAllEmpty(t *testing.T) {
	results := RunAll[int](context.Background(), 4, nil)
	if len(results) != 0 {
		t.Errorf("expected no results for empty input, got %d", len(results))
	}
}
