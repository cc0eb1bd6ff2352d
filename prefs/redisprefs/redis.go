package redisprefs

import (
	"context"
	"errors"
	"strconv"

	"github.com/prebid/tcf-adgate/errortypes"
	"github.com/prebid/tcf-adgate/logger"
	"github.com/prebid/tcf-adgate/prefs"
	"github.com/redis/go-redis/v9"
)

// intFieldPrefix marks hash fields holding integers. A key is stored either under its own
// name (string) or under the prefixed name (int), never both.
const intFieldPrefix = "i:"

func intField(key string) string {
	return intFieldPrefix + key
}

// NewStore returns a Store keeping each user's namespace in one redis hash named
// "<keyPrefix>:<user>:<namespace>".
func NewStore(client redis.UniversalClient, keyPrefix string) prefs.Store {
	return &store{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

type store struct {
	client    redis.UniversalClient
	keyPrefix string
}

func (s *store) Preferences(user, namespace string) prefs.Preferences {
	return &preferences{
		client: s.client,
		hash:   s.keyPrefix + ":" + user + ":" + namespace,
	}
}

type preferences struct {
	client redis.UniversalClient
	hash   string
}

func (p *preferences) get(ctx context.Context, field string) (string, bool) {
	value, err := p.client.HGet(ctx, p.hash, field).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Errorf("redis preferences: reading %s from %s: %v", field, p.hash, err)
		}
		return "", false
	}
	return value, true
}

func (p *preferences) GetString(ctx context.Context, key, defaultValue string) string {
	if value, ok := p.get(ctx, key); ok {
		return value
	}
	return defaultValue
}

func (p *preferences) GetInt(ctx context.Context, key string, defaultValue int) int {
	value, ok := p.get(ctx, intField(key))
	if !ok {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		logger.Warnf("redis preferences: %s in %s is not an integer: %q", key, p.hash, value)
		return defaultValue
	}
	return i
}

func (p *preferences) SetString(ctx context.Context, key, value string) error {
	return p.SetStrings(ctx, map[string]string{key: value})
}

// SetStrings writes all values in one MULTI/EXEC transaction and drops integers stored
// under the same keys.
func (p *preferences) SetStrings(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	fields := make([]interface{}, 0, 2*len(values))
	intFields := make([]string, 0, len(values))
	for key, value := range values {
		fields = append(fields, key, value)
		intFields = append(intFields, intField(key))
	}

	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, p.hash, fields...)
		pipe.HDel(ctx, p.hash, intFields...)
		return nil
	})
	if err != nil {
		return &errortypes.StoreFailure{Message: "redis preferences: writing " + p.hash + ": " + err.Error()}
	}
	return nil
}

func (p *preferences) SetInt(ctx context.Context, key string, value int) error {
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, p.hash, intField(key), strconv.Itoa(value))
		pipe.HDel(ctx, p.hash, key)
		return nil
	})
	if err != nil {
		return &errortypes.StoreFailure{Message: "redis preferences: writing " + key + ": " + err.Error()}
	}
	return nil
}

func (p *preferences) Remove(ctx context.Context, key string) error {
	if err := p.client.HDel(ctx, p.hash, key, intField(key)).Err(); err != nil {
		return &errortypes.StoreFailure{Message: "redis preferences: removing " + key + ": " + err.Error()}
	}
	return nil
}
