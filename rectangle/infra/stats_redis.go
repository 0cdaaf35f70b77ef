package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rectangle-service/rectangle/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore grava contadores de resultado em hashes Redis:
//
//	<prefix>:total              outcome -> n (cumulativo, não expira)
//	<prefix>:minute:<yyyymmddhhmm> outcome -> n
//	<prefix>:route              "<route>:<outcome>" -> n
//	<prefix>:client:<key>       outcome -> n (opcional)
type RedisStatsStore struct {
	rdb redis.UniversalClient

	prefix string
	// ttl vale para os buckets por minuto e por cliente.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackClients bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackClients(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackClients = track }
}

func NewRedisStatsStore(rdb redis.UniversalClient, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "rectangle:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) totalKey() string { return s.prefix + ":total" }

func (s *RedisStatsStore) clientKey(client domain.ClientKey) string {
	return s.prefix + ":client:" + strings.TrimSpace(string(client))
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.UpdateEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := string(ev.Outcome)

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.totalKey(), field, 1)

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if route := strings.TrimSpace(ev.Route); route != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", route+":"+field, 1)
	}

	if s.trackClients {
		if k := strings.TrimSpace(string(ev.Client)); k != "" {
			clientKey := s.clientKey(domain.ClientKey(k))
			pipe.HIncrBy(ctx, clientKey, field, 1)
			if s.ttl > 0 {
				pipe.Expire(ctx, clientKey, s.ttl)
			}
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Totals implementa domain.StatsReader a partir do hash cumulativo.
// Sem cliente Redis os totais saem zerados, como Record que não grava nada.
func (s *RedisStatsStore) Totals(ctx context.Context) (map[domain.Outcome]int64, error) {
	if s == nil || s.rdb == nil {
		return zeroFilled(nil), nil
	}
	return s.readCounts(ctx, s.totalKey())
}

// ClientTotals implementa domain.ClientStatsReader. Contadores por cliente
// expiram com o TTL; cliente expirado aparece zerado.
func (s *RedisStatsStore) ClientTotals(ctx context.Context, client domain.ClientKey) (map[domain.Outcome]int64, error) {
	if s == nil || !s.trackClients {
		return nil, domain.ErrClientStatsDisabled
	}
	if s.rdb == nil {
		return zeroFilled(nil), nil
	}
	return s.readCounts(ctx, s.clientKey(client))
}

func (s *RedisStatsStore) readCounts(ctx context.Context, key string) (map[domain.Outcome]int64, error) {
	raw, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	out := zeroFilled(nil)
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("stats field %s in %s: %w", k, key, err)
		}
		out[domain.Outcome(k)] = n
	}
	return out, nil
}
