package ml

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheKey struct {
	version string
	rec     Record
}

// PredictionCache memoizes successful predictions per artifact version.
type PredictionCache struct {
	entries *lru.Cache[cacheKey, float64]
}

func NewPredictionCache(size int) (*PredictionCache, error) {
	entries, err := lru.New[cacheKey, float64](size)
	if err != nil {
		return nil, err
	}
	return &PredictionCache{entries: entries}, nil
}

func (c *PredictionCache) Get(version string, rec Record) (float64, bool) {
	return c.entries.Get(cacheKey{version: version, rec: rec})
}

func (c *PredictionCache) Add(version string, rec Record, salary float64) {
	c.entries.Add(cacheKey{version: version, rec: rec}, salary)
}

func (c *PredictionCache) Purge() {
	c.entries.Purge()
}

func (c *PredictionCache) Len() int {
	return c.entries.Len()
}
