// Package cache keeps each user's dashboard summary in Redis so the
// dashboard does not re-aggregate the full history on every load. Writes to
// a user's tastings invalidate the entry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bbmitchh/Logmypour2/internal/config"
	"github.com/bbmitchh/Logmypour2/internal/tasting"
)

// genTTL bounds how long an idle user's write generation is kept.
const genTTL = 24 * time.Hour

// errStale aborts a Set whose generation moved.
var errStale = errors.New("summary generation changed")

// entry is the cached JSON form of a tasting.Cumulative.
type entry struct {
	Tastings   int     `json:"tastings"`
	ToSell     int     `json:"to_sell"`
	Sold       int     `json:"sold"`
	Left       int     `json:"left"`
	Poured     int     `json:"poured"`
	Conversion float64 `json:"conversion"`
}

func toEntry(c tasting.Cumulative) entry {
	return entry{
		Tastings:   c.Tastings,
		ToSell:     c.ToSell,
		Sold:       c.Sold,
		Left:       c.Left,
		Poured:     c.Poured,
		Conversion: c.Conversion,
	}
}

func (e entry) cumulative() tasting.Cumulative {
	return tasting.Cumulative{
		Tastings:   e.Tastings,
		ToSell:     e.ToSell,
		Sold:       e.Sold,
		Left:       e.Left,
		Poured:     e.Poured,
		Conversion: e.Conversion,
	}
}

// Summary caches tasting.Cumulative per user. A nil *Summary is valid and
// behaves as an always-empty cache.
//
// Each user also has a write generation, bumped by Invalidate. Readers take
// the generation before aggregating and Set refuses to store when it has
// moved, so a summary computed across a concurrent write is never cached.
type Summary struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewSummary returns nil when caching is disabled or no client is available.
func NewSummary(cfg config.CacheConfig, rdb *redis.Client) *Summary {
	if !cfg.Enabled || rdb == nil || cfg.TTL <= 0 {
		return nil
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "cache"
	}
	return &Summary{rdb: rdb, ttl: cfg.TTL, prefix: prefix}
}

func (s *Summary) key(userID uint64) string {
	return s.prefix + ":summary:" + strconv.FormatUint(userID, 10)
}

func (s *Summary) genKey(userID uint64) string {
	return s.prefix + ":summary_gen:" + strconv.FormatUint(userID, 10)
}

// Get returns the cached summary. Any Redis or decode error is a miss.
func (s *Summary) Get(ctx context.Context, userID uint64) (tasting.Cumulative, bool) {
	if s == nil {
		return tasting.Cumulative{}, false
	}
	raw, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		return tasting.Cumulative{}, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return tasting.Cumulative{}, false
	}
	return e.cumulative(), true
}

// Generation returns the write generation of userID; 0 before any write.
// ok is false when Redis cannot be read, and the caller should then skip
// Set.
func (s *Summary) Generation(ctx context.Context, userID uint64) (int64, bool) {
	if s == nil {
		return 0, false
	}
	return readGen(ctx, s.rdb, s.genKey(userID))
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGen(ctx context.Context, c getter, key string) (int64, bool) {
	n, err := c.Get(ctx, key).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, true
	case err != nil:
		return 0, false
	}
	return n, true
}

// Set stores c for userID when the generation still equals gen, best-effort.
// The check and the write run in one WATCH transaction, so an Invalidate
// racing with it aborts the write.
func (s *Summary) Set(ctx context.Context, userID uint64, c tasting.Cumulative, gen int64) {
	if s == nil {
		return
	}
	b, err := json.Marshal(toEntry(c))
	if err != nil {
		return
	}
	genKey := s.genKey(userID)
	_ = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, ok := readGen(ctx, tx, genKey)
		if !ok || cur != gen {
			return errStale
		}
		_, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.SetEx(ctx, s.key(userID), b, s.ttl)
			return nil
		})
		return err
	}, genKey)
}

// Invalidate bumps the write generation of userID and drops its cached
// summary, best-effort.
func (s *Summary) Invalidate(ctx context.Context, userID uint64) {
	if s == nil {
		return
	}
	genKey := s.genKey(userID)
	_, _ = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Expire(ctx, genKey, genTTL)
		p.Del(ctx, s.key(userID))
		return nil
	})
}
