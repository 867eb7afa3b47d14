package shared

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := NewKeyedMutex()
	// One slot per key, written only under that key's lock. The map itself
	// sees no writes while the goroutines run.
	counters := map[string]*int{"a": new(int), "b": new(int)}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, key := range []string{"a", "b"} {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				unlock := km.Lock(key)
				*counters[key]++
				unlock()
			}(key)
		}
	}
	wg.Wait()

	require.Equal(t, 50, *counters["a"])
	require.Equal(t, 50, *counters["b"])
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	km := NewKeyedMutex()
	unlock := km.Lock("x")
	unlock()

	km.mu.Lock()
	defer km.mu.Unlock()
	require.Empty(t, km.entries)
}
