package mcs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestReaderWriterLockExcludesWriters(t *testing.T) {
	const readers = 16
	const iterations = 200

	reg := newTestRegistry(readers+1, 4)
	lock := &ReaderWriterLock{}

	var activeReaders atomic.Int32
	var activeWriters atomic.Int32
	var maxObservedReaders atomic.Int32

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	g, _ := errgroup.WithContext(ctx)

	for i := 0; i < readers; i++ {
		thread := ThreadID(i)
		g.Go(func() error {
			for j := 0; j < iterations; j++ {
				id, ok := reg.AllocateRW(thread)
				if !ok {
					t.Errorf("thread %d: rw pool exhausted", thread)
					return nil
				}
				lock.ReaderAcquire(reg, id)
				if activeWriters.Load() != 0 {
					t.Errorf("reader active alongside a writer")
				}
				n := activeReaders.Add(1)
				for {
					cur := maxObservedReaders.Load()
					if n <= cur || maxObservedReaders.CompareAndSwap(cur, n) {
						break
					}
				}
				activeReaders.Add(-1)
				lock.ReaderRelease(reg, id)
				reg.FreeRW(id)
			}
			return nil
		})
	}

	writerThread := ThreadID(readers)
	g.Go(func() error {
		for j := 0; j < iterations/4; j++ {
			id, ok := reg.AllocateRW(writerThread)
			if !ok {
				t.Errorf("writer: rw pool exhausted")
				return nil
			}
			lock.WriterAcquire(reg, id)
			if activeReaders.Load() != 0 {
				t.Errorf("writer active alongside a reader")
			}
			if !activeWriters.CompareAndSwap(0, 1) {
				t.Errorf("two writers active at once")
			}
			activeWriters.Store(0)
			lock.WriterRelease(reg, id)
			reg.FreeRW(id)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if lock.IsLocked() {
		t.Error("lock reported locked after all releases")
	}
	if lock.ReaderCount() != 0 {
		t.Errorf("readersCount = %d, want 0", lock.ReaderCount())
	}
}

func TestReaderWriterLockCohortGranting(t *testing.T) {
	reg := newTestRegistry(4, 2)
	lock := &ReaderWriterLock{}

	idW, _ := reg.AllocateRW(0)
	lock.WriterAcquire(reg, idW)

	idR1, _ := reg.AllocateRW(1)
	idR2, _ := reg.AllocateRW(2)

	r1Granted := make(chan struct{})
	r2Granted := make(chan struct{})
	go func() {
		lock.ReaderAcquire(reg, idR1)
		close(r1Granted)
	}()
	// Give r1 a chance to queue behind the writer before r2 queues behind r1.
	time.Sleep(20 * time.Millisecond)
	go func() {
		lock.ReaderAcquire(reg, idR2)
		close(r2Granted)
	}()
	time.Sleep(20 * time.Millisecond)

	select {
	case <-r1Granted:
		t.Fatal("reader granted while writer still held the lock")
	default:
	}

	lock.WriterRelease(reg, idW)

	select {
	case <-r1Granted:
	case <-time.After(2 * time.Second):
		t.Fatal("r1 never granted after writer release")
	}
	select {
	case <-r2Granted:
	case <-time.After(2 * time.Second):
		t.Fatal("r2 never granted after writer release; cohort was not granted together")
	}

	if got := lock.ReaderCount(); got != 2 {
		t.Errorf("readersCount = %d, want 2", got)
	}

	lock.ReaderRelease(reg, idR1)
	lock.ReaderRelease(reg, idR2)
	if lock.IsLocked() {
		t.Error("lock still reported locked after both readers released")
	}
}

func TestReaderWriterLockQueuedWriterWaitsBehindReaderCohort(t *testing.T) {
	reg := newTestRegistry(3, 2)
	lock := &ReaderWriterLock{}

	idW0, _ := reg.AllocateRW(0)
	lock.WriterAcquire(reg, idW0)

	idR1, _ := reg.AllocateRW(1)
	r1Granted := make(chan struct{})
	go func() {
		lock.ReaderAcquire(reg, idR1)
		close(r1Granted)
	}()
	time.Sleep(20 * time.Millisecond)

	idW1, _ := reg.AllocateRW(2)
	w1Granted := make(chan struct{})
	go func() {
		lock.WriterAcquire(reg, idW1)
		close(w1Granted)
	}()
	time.Sleep(20 * time.Millisecond)

	lock.WriterRelease(reg, idW0)

	select {
	case <-r1Granted:
	case <-time.After(2 * time.Second):
		t.Fatal("r1 never granted after w0 released")
	}

	// w1 must stay queued while r1, the reader it was chained behind, is
	// still an active, granted reader: granting both at once would let a
	// writer overlap a live reader.
	time.Sleep(20 * time.Millisecond)
	select {
	case <-w1Granted:
		t.Fatal("w1 granted while r1 still held the lock as a reader")
	default:
	}
	if got := lock.ReaderCount(); got != 1 {
		t.Errorf("readersCount = %d, want 1", got)
	}

	lock.ReaderRelease(reg, idR1)

	select {
	case <-w1Granted:
	case <-time.After(2 * time.Second):
		t.Fatal("w1 never granted after r1 released")
	}
	if got := lock.ReaderCount(); got != 0 {
		t.Errorf("readersCount = %d, want 0 while w1 holds the lock", got)
	}

	lock.WriterRelease(reg, idW1)
	if lock.IsLocked() {
		t.Error("lock still reported locked after w1 released")
	}
}

func TestReaderWriterLockWriterWaitsForAllReaders(t *testing.T) {
	reg := newTestRegistry(3, 2)
	lock := &ReaderWriterLock{}

	idR1, _ := reg.AllocateRW(0)
	lock.ReaderAcquire(reg, idR1)
	idR2, _ := reg.AllocateRW(1)
	lock.ReaderAcquire(reg, idR2)

	idW, _ := reg.AllocateRW(2)
	wGranted := make(chan struct{})
	go func() {
		lock.WriterAcquire(reg, idW)
		close(wGranted)
	}()
	time.Sleep(20 * time.Millisecond)

	select {
	case <-wGranted:
		t.Fatal("writer granted while a reader still held the lock")
	default:
	}

	lock.ReaderRelease(reg, idR1)
	time.Sleep(20 * time.Millisecond)
	select {
	case <-wGranted:
		t.Fatal("writer granted while the second reader still held the lock")
	default:
	}

	lock.ReaderRelease(reg, idR2)
	select {
	case <-wGranted:
	case <-time.After(2 * time.Second):
		t.Fatal("writer never granted after both readers released")
	}
	lock.WriterRelease(reg, idW)
}
