package infra

import (
	"context"
	"sync"
	"time"

	"rectangle-service/rectangle/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ClientLimiters guarda um token bucket (x/time/rate) por cliente que envia
// atualizações. Clientes parados há mais de idleTTL são descartados.
type ClientLimiters struct {
	limit rate.Limit
	burst int

	idleTTL    time.Duration
	sweepEvery time.Duration
	now        func() time.Time

	mu      sync.Mutex
	clients map[domain.ClientKey]*clientBucket
}

type clientBucket struct {
	*rate.Limiter
	seen time.Time
}

type LimitersOption func(*ClientLimiters)

func WithIdleTTL(d time.Duration) LimitersOption {
	return func(c *ClientLimiters) { c.idleTTL = d }
}

// WithSweepEvery define o intervalo do janitor. Zero desliga.
func WithSweepEvery(d time.Duration) LimitersOption {
	return func(c *ClientLimiters) { c.sweepEvery = d }
}

func withClock(now func() time.Time) LimitersOption {
	return func(c *ClientLimiters) { c.now = now }
}

func NewClientLimiters(rps float64, burst int, opts ...LimitersOption) *ClientLimiters {
	c := &ClientLimiters{
		limit:      rate.Limit(rps),
		burst:      burst,
		idleTTL:    15 * time.Minute,
		sweepEvery: 2 * time.Minute,
		now:        time.Now,
		clients:    make(map[domain.ClientKey]*clientBucket),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ClientLimiters) RPS() float64 { return float64(c.limit) }

func (c *ClientLimiters) Burst() int { return c.burst }

// Get implementa domain.LimiterStore.
func (c *ClientLimiters) Get(client domain.ClientKey) domain.Limiter {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.clients[client]
	if !ok {
		b = &clientBucket{Limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[client] = b
	}
	b.seen = now
	return b.Limiter
}

func (c *ClientLimiters) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

// Sweep remove clientes inativos e devolve quantos saíram.
func (c *ClientLimiters) Sweep() int {
	cutoff := c.now().Add(-c.idleTTL)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, b := range c.clients {
		if b.seen.Before(cutoff) {
			delete(c.clients, k)
			removed++
		}
	}
	return removed
}

// StartJanitor roda Sweep periodicamente até o ctx encerrar.
func (c *ClientLimiters) StartJanitor(ctx context.Context, log logrus.FieldLogger) {
	if c.sweepEvery <= 0 {
		return
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	t := time.NewTicker(c.sweepEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := c.Sweep(); n > 0 {
					log.WithFields(logrus.Fields{"removed": n, "remaining": c.Len()}).Debug("idle rate limiters swept")
				}
			}
		}
	}()
}
