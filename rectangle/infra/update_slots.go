package infra

import (
	"context"
	"sync"
)

// UpdateSlots é um semáforo de capacidade fixa para atualizações pendentes.
type UpdateSlots struct {
	sem chan struct{}
}

func NewUpdateSlots(capacity int) *UpdateSlots {
	if capacity < 1 {
		capacity = 1
	}
	return &UpdateSlots{sem: make(chan struct{}, capacity)}
}

// Acquire implementa domain.UpdateSlots.
func (s *UpdateSlots) Acquire(ctx context.Context) (func(), bool) {
	// vaga livre tem prioridade sobre um ctx já encerrado
	select {
	case s.sem <- struct{}{}:
		return s.releaser(), true
	default:
	}

	select {
	case s.sem <- struct{}{}:
		return s.releaser(), true
	case <-ctx.Done():
		return nil, false
	}
}

func (s *UpdateSlots) releaser() func() {
	var once sync.Once
	return func() { once.Do(func() { <-s.sem }) }
}

func (s *UpdateSlots) InFlight() int { return len(s.sem) }

func (s *UpdateSlots) Capacity() int { return cap(s.sem) }
