package application

import (
	"context"
	"time"

	"rectangle-service/rectangle/domain"
)

// DefaultValidationDelay é o atraso aplicado antes de validar cada candidato.
// O cliente depende dessa latência para exibir o estado de "validando".
const DefaultValidationDelay = 10 * time.Second

// UpdateService concentra o ciclo Delaying -> Validating -> Persisting,
// sem saber nada sobre HTTP.
type UpdateService struct {
	Store domain.Store
	Delay time.Duration

	// OnDelay é chamado ao entrar e sair do atraso (usado para métricas).
	OnDelay func(entering bool)
}

// Current retorna o valor armazenado.
func (s UpdateService) Current(ctx context.Context) (domain.Dimensions, error) {
	return s.Store.Get(ctx)
}

// Check espera o atraso e valida, sem persistir.
func (s UpdateService) Check(ctx context.Context, candidate domain.Dimensions) error {
	s.wait()
	return Validate(candidate)
}

// Update espera o atraso, valida e persiste o candidato.
//
// O atraso é incondicional e não é abortado se o cliente desconectar:
// uma atualização aceita segue até o fim. Retorna *domain.ValidationError
// ou *domain.StoreError; em ambos os casos o valor armazenado não muda.
func (s UpdateService) Update(ctx context.Context, candidate domain.Dimensions) (domain.Dimensions, error) {
	if err := s.Check(ctx, candidate); err != nil {
		return domain.Dimensions{}, err
	}

	if err := s.Store.Set(context.WithoutCancel(ctx), candidate); err != nil {
		return domain.Dimensions{}, err
	}
	return candidate, nil
}

func (s UpdateService) wait() {
	if s.OnDelay != nil {
		s.OnDelay(true)
		defer s.OnDelay(false)
	}
	if s.Delay <= 0 {
		return
	}

	t := time.NewTimer(s.Delay)
	defer t.Stop()
	<-t.C
}
