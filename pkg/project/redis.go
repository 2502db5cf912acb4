package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/matlayer/pkg/cache"
)

// DefaultRedisPrefix namespaces document keys.
const DefaultRedisPrefix = "matlayer:material:"

// RedisStore stores each document as a JSON string under prefix+name.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps client and verifies the connection.
// An empty prefix uses DefaultRedisPrefix.
func NewRedisStore(ctx context.Context, client *redis.Client, prefix string) (*RedisStore, error) {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) Get(ctx context.Context, name string) (*Document, error) {
	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = s.client.Get(ctx, s.prefix+name).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return cache.Retryable(err)
		}
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", name, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document %s: %w", name, err)
	}
	return &doc, nil
}

func (s *RedisStore) Set(ctx context.Context, doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return cache.RetryWithBackoff(ctx, func() error {
		return cache.Retryable(s.client.Set(ctx, s.prefix+doc.Name, data, 0).Err())
	})
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	return s.client.Del(ctx, s.prefix+name).Err()
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
