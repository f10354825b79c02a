package view

import (
	"errors"
	"sync"
	"testing"
)

func TestActionTrackerPerRowIsolation(t *testing.T) {
	tr := NewActionTracker()

	if !tr.Begin(1) {
		t.Fatal("first Begin(1) refused")
	}
	if tr.Begin(1) {
		t.Fatal("duplicate Begin(1) accepted while in flight")
	}
	// A different row is unaffected.
	if !tr.Begin(2) {
		t.Fatal("Begin(2) refused while row 1 in flight")
	}

	tr.Finish(1, nil)
	if tr.State(1) != ActionIdle {
		t.Errorf("row 1 after success = %s", tr.State(1))
	}
	if !tr.Begin(1) {
		t.Error("row 1 not re-enabled after success")
	}
	tr.Finish(1, nil)

	tr.Finish(2, errors.New("boom"))
	if tr.State(2) != ActionFailed {
		t.Errorf("row 2 after failure = %s", tr.State(2))
	}
	// Failure re-enables the control for a manual retry.
	if !tr.Begin(2) {
		t.Error("row 2 not retryable after failure")
	}
}

func TestActionTrackerConcurrentBegin(t *testing.T) {
	tr := NewActionTracker()
	const n = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.Begin(7) {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)
	count := 0
	for range wins {
		count++
	}
	if count != 1 {
		t.Fatalf("%d goroutines won Begin for the same row, want 1", count)
	}
}

func TestFetchGateLatestWins(t *testing.T) {
	var g FetchGate

	slow := g.Next()
	fast := g.Next()

	// The fetch started last completes first and publishes.
	if !g.Accept(fast) {
		t.Fatal("newest fetch rejected")
	}
	// The stale response arrives afterwards and must be discarded.
	if g.Accept(slow) {
		t.Fatal("stale fetch accepted")
	}

	next := g.Next()
	if g.Accept(fast) {
		t.Fatal("superseded fetch accepted")
	}
	if !g.Accept(next) {
		t.Fatal("current fetch rejected")
	}
}
