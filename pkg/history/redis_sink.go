package history

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/morfien101/fila/pkg/fila"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisSink appends each record to a list and keeps per-class counters:
//
//	<prefix>:<queue>:served        list of JSON documents
//	<prefix>:<queue>:served:count  hash of service class -> count
type RedisSink struct {
	rdb    *redis.Client
	prefix string
	queue  string
}

func NewRedisSink(ctx context.Context, opts Options) (*RedisSink, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return newRedisSink(rdb, opts.RedisPrefix, opts.Queue), nil
}

func newRedisSink(rdb *redis.Client, prefix, queue string) *RedisSink {
	prefix = strings.Trim(prefix, ":")
	if prefix == "" {
		prefix = "fila"
	}
	return &RedisSink{rdb: rdb, prefix: prefix, queue: queue}
}

func (s *RedisSink) listKey() string  { return s.prefix + ":" + s.queue + ":served" }
func (s *RedisSink) countKey() string { return s.listKey() + ":count" }

func (s *RedisSink) Write(ctx context.Context, rec fila.ServedRecord) error {
	payload, err := json.Marshal(NewDocument(s.queue, rec))
	if err != nil {
		return errors.Wrap(err, "failed to marshal record")
	}

	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, s.listKey(), payload)
	pipe.HIncrBy(ctx, s.countKey(), string(rec.ServiceClass), 1)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSink) Close() error {
	return s.rdb.Close()
}
