package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"videonet/internal/core/domain"
)

func TestQuality_Default(t *testing.T) {
	q := NewQuality()
	assert.Equal(t, DefaultQuality, q.Get())
}

func TestQuality_SetWithinBounds(t *testing.T) {
	q := NewQuality()

	for _, v := range []int{0, 1, 50, 99, 100} {
		assert.NoError(t, q.Set(v))
		assert.Equal(t, v, q.Get())
	}
}

func TestQuality_RejectsOutOfRange(t *testing.T) {
	q := NewQuality()
	assert.NoError(t, q.Set(75))

	for _, v := range []int{-1, 101, 1000, -50} {
		err := q.Set(v)
		assert.ErrorIs(t, err, domain.ErrInvalidQuality)
		// A rejected update must leave the previous value untouched.
		assert.Equal(t, 75, q.Get())
	}
}

func TestQuality_ConcurrentAccess(t *testing.T) {
	q := NewQuality()

	var wg sync.WaitGroup
	for i := 0; i <= 100; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			q.Set(v)
			q.Get()
		}(i)
	}
	wg.Wait()

	got := q.Get()
	assert.GreaterOrEqual(t, got, MinQuality)
	assert.LessOrEqual(t, got, MaxQuality)
}
