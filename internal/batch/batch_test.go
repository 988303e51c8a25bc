package batch

import (
	"context"
	"sync/atomic"
	"testing"

	"logfix/internal/transaction"
)

func TestRunProcessesAllFiles(t *testing.T) {
	files := []string{"a.cs", "b.cs", "c.cs", "d.cs"}

	var calls atomic.Int64
	results, err := Run(context.Background(), files, 2, func(path string) transaction.FileResult {
		calls.Add(1)
		return transaction.FileResult{Path: path, Outcome: transaction.FileUnchanged}
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if calls.Load() != int64(len(files)) {
		t.Errorf("processed %d files, want %d", calls.Load(), len(files))
	}
	// Results keep input order regardless of completion order.
	for i, r := range results {
		if r.Path != files[i] {
			t.Errorf("results[%d].Path = %q, want %q", i, r.Path, files[i])
		}
	}
}

func TestRunSequentialByDefault(t *testing.T) {
	var concurrent, peak atomic.Int64
	files := []string{"a", "b", "c"}

	_, err := Run(context.Background(), files, 1, func(path string) transaction.FileResult {
		cur := concurrent.Add(1)
		if cur > peak.Load() {
			peak.Store(cur)
		}
		concurrent.Add(-1)
		return transaction.FileResult{Path: path}
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if peak.Load() > 1 {
		t.Errorf("peak concurrency = %d with workers=1", peak.Load())
	}
}

func TestRunEmptyInput(t *testing.T) {
	results, err := Run(context.Background(), nil, 4, func(string) transaction.FileResult {
		t.Error("process should not be called")
		return transaction.FileResult{}
	})
	if err != nil || results != nil {
		t.Errorf("Run(nil) = %v, %v", results, err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := make([]string, 100)
	for i := range files {
		files[i] = "f"
	}

	_, err := Run(ctx, files, 1, func(path string) transaction.FileResult {
		return transaction.FileResult{Path: path}
	})
	if err == nil {
		t.Error("Run should surface context cancellation")
	}
}
