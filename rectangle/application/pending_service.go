package application

import (
	"context"
	"time"

	"rectangle-service/rectangle/domain"
)

// PendingService reserva uma vaga para uma atualização que vai entrar no atraso
// de validação.
type PendingService struct {
	Slots          domain.UpdateSlots
	AcquireTimeout time.Duration
}

// Acquire reserva uma vaga. Sem AcquireTimeout espera até o ctx encerrar;
// ok=false significa que nada foi reservado.
func (s PendingService) Acquire(ctx context.Context) (func(), bool) {
	if s.Slots == nil {
		return func() {}, true
	}

	if s.AcquireTimeout <= 0 {
		return s.Slots.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()
	return s.Slots.Acquire(acqCtx)
}
