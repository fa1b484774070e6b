package cache

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// The cache is a package used for objects that are expensive or wasteful
// to build more than once and never change after they are built, such as
// the zobrist key tables for a given board size.

// Cache lazily loads one object per key.
type Cache[K comparable, V any] struct {
	sync.Mutex
	name    string
	objects map[K]V
}

type LoadFunc[K comparable, V any] func(key K) (V, error)

func New[K comparable, V any](name string) *Cache[K, V] {
	return &Cache[K, V]{name: name, objects: make(map[K]V)}
}

func (c *Cache[K, V]) load(key K, loadFunc LoadFunc[K, V]) (V, error) {
	log.Debug().Str("cache", c.name).Interface("key", key).Msg("loading into cache")

	obj, err := loadFunc(key)
	if err != nil {
		return obj, err
	}
	c.objects[key] = obj
	return obj, nil
}

// Load returns the object for key, calling loadFunc to build it on the
// first request. Failed loads are not cached.
func (c *Cache[K, V]) Load(key K, loadFunc LoadFunc[K, V]) (V, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		return obj, nil
	}
	return c.load(key, loadFunc)
}

func (c *Cache[K, V]) Len() int {
	c.Lock()
	defer c.Unlock()
	return len(c.objects)
}
