package memory

import (
	"context"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/prebid/tcf-adgate/prefs"
)

// NewStore returns an in-process Store. Values never expire.
func NewStore() prefs.Store {
	return &store{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

type store struct {
	cache *cache.Cache
}

func (s *store) Preferences(user, namespace string) prefs.Preferences {
	return &preferences{
		cache:  s.cache,
		prefix: strings.Join([]string{user, namespace, ""}, "\x00"),
	}
}

type preferences struct {
	cache  *cache.Cache
	prefix string
}

func (p *preferences) GetString(_ context.Context, key, defaultValue string) string {
	if v, ok := p.cache.Get(p.prefix + key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultValue
}

func (p *preferences) GetInt(_ context.Context, key string, defaultValue int) int {
	if v, ok := p.cache.Get(p.prefix + key); ok {
		if i, ok := v.(int); ok {
			return i
		}
	}
	return defaultValue
}

func (p *preferences) SetString(_ context.Context, key, value string) error {
	p.cache.Set(p.prefix+key, value, cache.NoExpiration)
	return nil
}

func (p *preferences) SetStrings(_ context.Context, values map[string]string) error {
	for key, value := range values {
		p.cache.Set(p.prefix+key, value, cache.NoExpiration)
	}
	return nil
}

func (p *preferences) SetInt(_ context.Context, key string, value int) error {
	p.cache.Set(p.prefix+key, value, cache.NoExpiration)
	return nil
}

func (p *preferences) Remove(_ context.Context, key string) error {
	p.cache.Delete(p.prefix + key)
	return nil
}
