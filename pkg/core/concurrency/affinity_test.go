package concurrency

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffinityRouter_RoundRobinFirstAssignment(t *testing.T) {
	router := newAffinityRouter(3)

	for k := 1; k <= 10; k++ {
		id := Identity(fmt.Sprintf("caller-%d", k))
		assert.Equal(t, (k-1)%3, router.Resolve(id), "identity #%d", k)
	}
	assert.Equal(t, 10, router.Assigned())
}

func TestAffinityRouter_Sticky(t *testing.T) {
	router := newAffinityRouter(4)

	first := router.Resolve("a")
	second := router.Resolve("b")
	for i := 0; i < 100; i++ {
		require.Equal(t, first, router.Resolve("a"))
		require.Equal(t, second, router.Resolve("b"))
	}
	assert.Equal(t, uint64(2), router.counter.Load(), "repeat lookups must not advance the counter")
}

func TestAffinityRouter_ConcurrentFirstAssignment(t *testing.T) {
	const (
		pools      = 4
		identities = 64
		callers    = 16
	)
	router := newAffinityRouter(pools)

	results := make([][]int, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for c := 0; c < callers; c++ {
		results[c] = make([]int, identities)
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			<-start
			for i := 0; i < identities; i++ {
				results[c][i] = router.Resolve(Identity(fmt.Sprintf("id-%d", i)))
			}
		}(c)
	}
	close(start)
	wg.Wait()

	for i := 0; i < identities; i++ {
		for c := 1; c < callers; c++ {
			require.Equal(t, results[0][i], results[c][i], "identity %d resolved differently", i)
		}
	}
	assert.Equal(t, uint64(identities), router.counter.Load(), "counter advances once per distinct identity")

	perPool := make([]int, pools)
	for i := 0; i < identities; i++ {
		perPool[results[0][i]]++
	}
	for idx, n := range perPool {
		assert.Equal(t, identities/pools, n, "pool %d", idx)
	}
}

func TestAffinityRouter_LookupAndReset(t *testing.T) {
	router := newAffinityRouter(2)

	_, ok := router.Lookup("x")
	assert.False(t, ok)

	idx := router.Resolve("x")
	got, ok := router.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, idx, got)

	router.Reset()
	assert.Equal(t, 0, router.Assigned())
	_, ok = router.Lookup("x")
	assert.False(t, ok)
}
