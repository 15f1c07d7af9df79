package memory

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLockSerializesSameKey(t *testing.T) {
	l := NewKeyedLocker()
	ctx := context.Background()

	var inCritical, max int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "k")
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			mu.Lock()
			inCritical++
			if inCritical > max {
				max = inCritical
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inCritical--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	if max != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", max)
	}
}

func TestLockDifferentKeysIndependent(t *testing.T) {
	l := NewKeyedLocker()
	ctx := context.Background()

	unlockA, err := l.Lock(ctx, "a")
	if err != nil {
		t.Fatalf("Lock a: %v", err)
	}
	defer unlockA()

	unlockB, err := l.Lock(ctx, "b")
	if err != nil {
		t.Fatalf("Lock b blocked by a: %v", err)
	}
	unlockB()
}

func TestLockHonorsContext(t *testing.T) {
	l := NewKeyedLocker()
	unlock, err := l.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "k"); err == nil {
		t.Fatal("second Lock should fail when ctx expires")
	}
}

func TestTryLock(t *testing.T) {
	l := NewKeyedLocker()

	unlock, ok := l.TryLock("k")
	if !ok {
		t.Fatal("TryLock on a free key failed")
	}
	if _, ok := l.TryLock("k"); ok {
		t.Fatal("TryLock acquired a held lock")
	}
	unlock()
	unlock2, ok := l.TryLock("k")
	if !ok {
		t.Fatal("TryLock after unlock failed")
	}
	unlock2()
}

func TestUnlockIsIdempotent(t *testing.T) {
	l := NewKeyedLocker()
	unlock, _ := l.TryLock("k")
	unlock()
	unlock() // second call must not panic or double-release

	unlock2, ok := l.TryLock("k")
	if !ok {
		t.Fatal("lock not released")
	}
	unlock2()
}

func TestEntriesDoNotLeak(t *testing.T) {
	l := NewKeyedLocker()
	for i := 0; i < 100; i++ {
		unlock, _ := l.TryLock("k")
		unlock()
	}
	l.mu.Lock()
	n := len(l.entries)
	l.mu.Unlock()
	if n != 0 {
		t.Fatalf("entries map holds %d stale entries", n)
	}
}
