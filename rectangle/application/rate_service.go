package application

import (
	"time"

	"rectangle-service/rectangle/domain"
)

// DefaultRetryAfter é sugerido ao cliente bloqueado quando nada foi configurado.
const DefaultRetryAfter = time.Second

// RateService aplica o token bucket de cada cliente às atualizações do
// retângulo. Não conhece HTTP; devolve só a decisão.
type RateService struct {
	Limiters   domain.LimiterStore
	RetryAfter time.Duration
}

func (s RateService) Decide(client domain.ClientKey) domain.Decision {
	allow := domain.Decision{Allowed: true}
	if s.Limiters == nil {
		return allow
	}
	if lim := s.Limiters.Get(client); lim == nil || lim.Allow() {
		return allow
	}

	wait := s.RetryAfter
	if wait <= 0 {
		wait = DefaultRetryAfter
	}
	return domain.Decision{RetryAfter: wait}
}
