package service

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type notifierCall struct {
	articleID uint
	pageviews uint64
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifierCall
}

func (f *fakeNotifier) Notify(ctx context.Context, articleID uint, pageviews uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifierCall{articleID: articleID, pageviews: pageviews})
}

func (f *fakeNotifier) recorded() []notifierCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notifierCall(nil), f.calls...)
}

func TestPageviewService_SequentialIncrements(t *testing.T) {
	store := newFakeStore()
	svc := NewPageviewService(store, nil)
	ctx := context.Background()

	var last uint64
	for i := 0; i < 5; i++ {
		count, err := svc.Increment(ctx, 7)
		if err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
		last = count
	}
	if last != 5 {
		t.Fatalf("expected final count 5, got %d", last)
	}
}

func TestPageviewService_ConcurrentIncrementsSumExactly(t *testing.T) {
	store := newFakeStore()
	svc := NewPageviewService(store, nil)
	ctx := context.Background()

	const workers = 100

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Increment(ctx, 7); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent increment failed: %v", err)
	}

	count, err := svc.Increment(ctx, 7)
	if err != nil {
		t.Fatalf("final increment: %v", err)
	}
	if count != workers+1 {
		t.Fatalf("expected %d after %d concurrent increments, got %d", workers+1, workers, count)
	}
}

func TestPageviewService_CountersAreIndependentPerArticle(t *testing.T) {
	store := newFakeStore()
	svc := NewPageviewService(store, nil)
	ctx := context.Background()

	if _, err := svc.Increment(ctx, 1); err != nil {
		t.Fatalf("increment article 1: %v", err)
	}
	count, err := svc.Increment(ctx, 2)
	if err != nil {
		t.Fatalf("increment article 2: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected independent counter starting at 1, got %d", count)
	}
}

func TestPageviewService_CelebratesEveryMultipleOfStep(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewPageviewService(store, notifier).WithCelebrationStep(3)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if _, err := svc.Increment(ctx, 9); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}

	calls := notifier.recorded()
	if len(calls) != 2 {
		t.Fatalf("expected 2 celebrations (at 3 and 6), got %d", len(calls))
	}
	if calls[0].articleID != 9 || calls[0].pageviews != 3 {
		t.Fatalf("unexpected first celebration: %+v", calls[0])
	}
	if calls[1].articleID != 9 || calls[1].pageviews != 6 {
		t.Fatalf("unexpected second celebration: %+v", calls[1])
	}
}

func TestPageviewService_CounterErrorSkipsCelebration(t *testing.T) {
	store := newFakeStore()
	store.incrErr = errors.New("counter store down")
	notifier := &fakeNotifier{}
	svc := NewPageviewService(store, notifier).WithCelebrationStep(1)

	if _, err := svc.Increment(context.Background(), 9); err == nil {
		t.Fatal("expected increment error to propagate")
	}
	if len(notifier.recorded()) != 0 {
		t.Fatal("expected no celebration when the increment fails")
	}
}

func TestPageviewService_RejectsZeroArticleID(t *testing.T) {
	svc := NewPageviewService(newFakeStore(), nil)
	if _, err := svc.Increment(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero article id")
	}
}
