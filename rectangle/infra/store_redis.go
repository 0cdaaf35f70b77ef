package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rectangle-service/rectangle/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStore guarda o registro durável numa chave Redis, no mesmo formato
// JSON do FileStore. Um SET substitui width e height de uma vez.
type RedisStore struct {
	rdb redis.UniversalClient
	key string
	def domain.Dimensions
}

type RedisStoreOption func(*RedisStore)

func WithRedisKey(key string) RedisStoreOption {
	return func(s *RedisStore) {
		if k := strings.TrimSpace(key); k != "" {
			s.key = k
		}
	}
}

// OpenRedisStore cria o registro com def (SETNX) caso a chave ainda não exista.
func OpenRedisStore(ctx context.Context, rdb redis.UniversalClient, def domain.Dimensions, opts ...RedisStoreOption) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("redis client is required")
	}
	s := &RedisStore{
		rdb: rdb,
		key: "rectangle:dimensions",
		def: def,
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := encodeRecord(def)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.SetNX(ctx, s.key, data, 0).Err(); err != nil {
		return nil, &domain.StoreError{Op: "init", Err: err}
	}
	return s, nil
}

func (s *RedisStore) Key() string { return s.key }

func (s *RedisStore) Get(ctx context.Context) (domain.Dimensions, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		// chave removida por fora: volta ao default
		return s.def, nil
	}
	if err != nil {
		return domain.Dimensions{}, &domain.StoreError{Op: "read", Err: err}
	}

	d, err := decodeRecord(raw)
	if err != nil {
		return domain.Dimensions{}, &domain.StoreError{Op: "decode", Err: fmt.Errorf("key %s: %w", s.key, err)}
	}
	return d, nil
}

func (s *RedisStore) Set(ctx context.Context, d domain.Dimensions) error {
	data, err := encodeRecord(d)
	if err != nil {
		return &domain.StoreError{Op: "encode", Err: err}
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return &domain.StoreError{Op: "write", Err: err}
	}
	return nil
}
