package infra

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rectangle-service/rectangle/domain"
)

func TestMemoryStore_GetReturnsInitial(t *testing.T) {
	s := NewMemoryStore(domain.Dimensions{Width: 100, Height: 100})

	got, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Dimensions{Width: 100, Height: 100}, got)
}

func TestMemoryStore_ConcurrentSetNeverMixesFields(t *testing.T) {
	s := NewMemoryStore(domain.DefaultDimensions())
	a := domain.Dimensions{Width: 10, Height: 20}
	b := domain.Dimensions{Width: 30, Height: 40}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); _ = s.Set(ctx, a) }()
		go func() { defer wg.Done(); _ = s.Set(ctx, b) }()
		go func() {
			defer wg.Done()
			got, _ := s.Get(ctx)
			if got != a && got != b && got != domain.DefaultDimensions() {
				t.Errorf("observed hybrid value %+v", got)
			}
		}()
	}
	wg.Wait()

	got, _ := s.Get(ctx)
	assert.Contains(t, []domain.Dimensions{a, b}, got)
}
