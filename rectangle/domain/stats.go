package domain

import (
	"context"
	"time"
)

// Outcome é o estado terminal de uma requisição de atualização.
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeRejected  Outcome = "rejected"
	OutcomeMalformed Outcome = "malformed"
	OutcomeFailed    Outcome = "failed"
)

// Outcomes lista os resultados na ordem usada em relatórios.
var Outcomes = []Outcome{OutcomeAccepted, OutcomeRejected, OutcomeMalformed, OutcomeFailed}

// UpdateEvent registra o resultado de um POST.
//
// Cuidado com cardinalidade: Client só deve ser gravado por chave quando
// o store foi configurado para isso.
type UpdateEvent struct {
	Client  ClientKey
	Outcome Outcome
	Route   string

	At time.Time
}

// StatsStore persiste estatísticas de atualização.
// O handler trata erro como best-effort (não derruba a requisição).
type StatsStore interface {
	Record(ctx context.Context, ev UpdateEvent) error
}

// StatsReader expõe os totais por resultado.
type StatsReader interface {
	Totals(ctx context.Context) (map[Outcome]int64, error)
}

// ClientStatsReader expõe os totais de um cliente. Devolve
// ErrClientStatsDisabled quando o store não rastreia clientes.
type ClientStatsReader interface {
	ClientTotals(ctx context.Context, client ClientKey) (map[Outcome]int64, error)
}
