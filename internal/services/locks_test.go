package services

import (
	"sync"
	"testing"
	"time"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := newKeyedMutex()

	const workers = 8
	var wg sync.WaitGroup
	active := 0
	maxActive := 0
	var state sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("doc-1")
			defer km.Unlock("doc-1")

			state.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			state.Unlock()

			time.Sleep(time.Millisecond)

			state.Lock()
			active--
			state.Unlock()
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Fatalf("observed %d concurrent holders of the same key", maxActive)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := newKeyedMutex()
	km.Lock("doc-1")
	defer km.Unlock("doc-1")

	acquired := make(chan struct{})
	go func() {
		km.Lock("doc-2")
		defer km.Unlock("doc-2")
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("a different key must not block")
	}
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	km := newKeyedMutex()
	for i := 0; i < 100; i++ {
		km.Lock("doc-1")
		km.Unlock("doc-1")
	}
	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.entries) != 0 {
		t.Fatalf("entries map holds %d stale entries", len(km.entries))
	}
}
