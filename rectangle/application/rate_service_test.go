package application

import (
	"testing"
	"time"

	"rectangle-service/rectangle/domain"

	"github.com/stretchr/testify/assert"
)

type stubLimiter bool

func (s stubLimiter) Allow() bool { return bool(s) }

// perClient devolve um limiter por chave; chave ausente devolve nil.
type perClient map[domain.ClientKey]domain.Limiter

func (p perClient) Get(k domain.ClientKey) domain.Limiter { return p[k] }

func TestRateService_Decide(t *testing.T) {
	limiters := perClient{
		"open":    stubLimiter(true),
		"drained": stubLimiter(false),
	}

	cases := []struct {
		name   string
		svc    RateService
		client domain.ClientKey
		want   domain.Decision
	}{
		{"no limiters", RateService{}, "drained", domain.Decision{Allowed: true}},
		{"limiter allows", RateService{Limiters: limiters, RetryAfter: 5 * time.Second}, "open", domain.Decision{Allowed: true}},
		{"nil limiter allows", RateService{Limiters: limiters}, "new", domain.Decision{Allowed: true}},
		{"blocked with default", RateService{Limiters: limiters}, "drained", domain.Decision{RetryAfter: DefaultRetryAfter}},
		{"blocked with configured", RateService{Limiters: limiters, RetryAfter: 2500 * time.Millisecond}, "drained", domain.Decision{RetryAfter: 2500 * time.Millisecond}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.svc.Decide(tc.client))
		})
	}
}
