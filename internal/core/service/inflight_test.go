package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInFlightClaimRelease(t *testing.T) {
	f := NewInFlight()

	assert.True(t, f.Claim(1))
	assert.False(t, f.Claim(1))
	assert.True(t, f.Claim(2))

	f.Release(1)
	assert.True(t, f.Claim(1))
}

func TestInFlightConcurrentClaims(t *testing.T) {
	f := NewInFlight()

	var wg sync.WaitGroup
	var mu sync.Mutex
	claimed := 0

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.Claim(7) {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, claimed)
}
