package domain

import (
	"context"
	"time"
)

// ClientKey identifica quem envia a atualização (IP ou header configurado).
type ClientKey string

// Limiter é o token bucket de um cliente.
type Limiter interface {
	Allow() bool
}

// LimiterStore devolve o limiter de cada cliente, criando sob demanda.
type LimiterStore interface {
	Get(ClientKey) Limiter
}

// Decision é a resposta do rate limit para uma atualização.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// UpdateSlots limita as atualizações paradas no atraso de validação.
// Acquire espera uma vaga até o ctx encerrar; release deve ser chamado uma vez.
type UpdateSlots interface {
	Acquire(ctx context.Context) (release func(), ok bool)
	InFlight() int
}
