package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesPerKey(t *testing.T) {
	kl := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kl.Lock("P1")
			defer kl.Unlock("P1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestLockAllDedupsAndOrders(t *testing.T) {
	kl := New()

	// Duplicate and empty keys must not deadlock or panic.
	release := kl.LockAll([]string{"b", "a", "b", ""})
	release()

	// Opposite orderings of the same key set cannot deadlock because
	// acquisition is sorted.
	done := make(chan struct{})
	go func() {
		r := kl.LockAll([]string{"a", "b"})
		r()
		r = kl.LockAll([]string{"b", "a"})
		r()
		close(done)
	}()
	r := kl.LockAll([]string{"b", "a"})
	r()
	<-done
}

func TestIndependentKeysDoNotBlock(t *testing.T) {
	kl := New()
	kl.Lock("P1")
	defer kl.Unlock("P1")

	acquired := make(chan struct{})
	go func() {
		kl.Lock("P2")
		kl.Unlock("P2")
		close(acquired)
	}()
	<-acquired
}
