package services

import (
	"sync"

	"videonet/internal/core/domain"
)

const (
	DefaultQuality = 50
	MinQuality     = 0
	MaxQuality     = 100
)

// Quality holds the process-wide compression quality parameter. It is set by
// clients over signaling and read out-of-band by the compression collaborator;
// updates are never broadcast.
type Quality struct {
	mu    sync.RWMutex
	value int
}

func NewQuality() *Quality {
	return &Quality{value: DefaultQuality}
}

// Set replaces the stored value if it is within [0, 100]; otherwise the
// previous value is retained and ErrInvalidQuality is returned.
func (q *Quality) Set(value int) error {
	if value < MinQuality || value > MaxQuality {
		return domain.ErrInvalidQuality
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.value = value
	return nil
}

func (q *Quality) Get() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return q.value
}
