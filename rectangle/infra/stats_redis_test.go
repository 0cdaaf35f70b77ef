package infra

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rectangle-service/rectangle/domain"
)

func TestRedisStatsStore_WithoutClientIsANoop(t *testing.T) {
	s := NewRedisStatsStore(nil, WithStatsTrackClients(true))
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, domain.UpdateEvent{Outcome: domain.OutcomeAccepted}))

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	assert.Len(t, totals, len(domain.Outcomes))
	assert.Zero(t, totals[domain.OutcomeAccepted])

	perClient, err := s.ClientTotals(ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, perClient[domain.OutcomeAccepted])

	var zero RedisStatsStore
	_, err = zero.Totals(ctx)
	assert.NoError(t, err)
}

func TestRedisStatsStore_ClientTotalsNeedTracking(t *testing.T) {
	s := NewRedisStatsStore(nil)

	_, err := s.ClientTotals(context.Background(), "c1")
	assert.ErrorIs(t, err, domain.ErrClientStatsDisabled)
}
