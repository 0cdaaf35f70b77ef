package infra

import (
	"context"
	"sync"

	"rectangle-service/rectangle/domain"
)

// MemoryStatsStore conta resultados de atualização em memória.
//
// Não faz expiração; os contadores zeram quando o processo reinicia.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    map[domain.Outcome]int64
	byClient map[domain.ClientKey]map[domain.Outcome]int64

	trackClients bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackClients(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackClients = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		total:    make(map[domain.Outcome]int64),
		byClient: make(map[domain.ClientKey]map[domain.Outcome]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.UpdateEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total[ev.Outcome]++
	if s.trackClients && ev.Client != "" {
		c := s.byClient[ev.Client]
		if c == nil {
			c = make(map[domain.Outcome]int64)
			s.byClient[ev.Client] = c
		}
		c[ev.Outcome]++
	}
	return nil
}

// Totals implementa domain.StatsReader. Todos os resultados aparecem, mesmo zerados.
func (s *MemoryStatsStore) Totals(context.Context) (map[domain.Outcome]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return zeroFilled(s.total), nil
}

// ClientTotals implementa domain.ClientStatsReader.
func (s *MemoryStatsStore) ClientTotals(_ context.Context, client domain.ClientKey) (map[domain.Outcome]int64, error) {
	if !s.trackClients {
		return nil, domain.ErrClientStatsDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return zeroFilled(s.byClient[client]), nil
}

func zeroFilled(counts map[domain.Outcome]int64) map[domain.Outcome]int64 {
	out := make(map[domain.Outcome]int64, len(domain.Outcomes))
	for _, o := range domain.Outcomes {
		out[o] = counts[o]
	}
	return out
}
