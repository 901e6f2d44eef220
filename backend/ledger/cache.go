package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cachePrefix = "academy:ledger"

// CachedClient wraps a Client with a Redis read-through cache. Missing
// accounts are never cached. Redis failures are logged and the call falls
// through to the wrapped client.
type CachedClient struct {
	next   Client
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedClient(next Client, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedClient {
	return &CachedClient{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.Named("ledger_cache"),
	}
}

func balanceKey(learner string) string { return fmt.Sprintf("%s:balance:%s", cachePrefix, learner) }
func profileKey(learner string) string { return fmt.Sprintf("%s:profile:%s", cachePrefix, learner) }
func courseKey(courseID string) string { return fmt.Sprintf("%s:course:%s", cachePrefix, courseID) }

func enrollmentKey(courseID, learner string) string {
	return fmt.Sprintf("%s:enrollment:%s:%s", cachePrefix, courseID, learner)
}

func (c *CachedClient) FetchBalance(ctx context.Context, learner string) (uint64, error) {
	return readThrough(ctx, c, balanceKey(learner), func() (uint64, error) {
		return c.next.FetchBalance(ctx, learner)
	})
}

func (c *CachedClient) FetchProfile(ctx context.Context, learner string) (*Profile, error) {
	return readThrough(ctx, c, profileKey(learner), func() (*Profile, error) {
		return c.next.FetchProfile(ctx, learner)
	})
}

func (c *CachedClient) FetchEnrollment(ctx context.Context, courseID, learner string) (*Enrollment, error) {
	return readThrough(ctx, c, enrollmentKey(courseID, learner), func() (*Enrollment, error) {
		return c.next.FetchEnrollment(ctx, courseID, learner)
	})
}

func (c *CachedClient) FetchCourse(ctx context.Context, courseID string) (*Course, error) {
	return readThrough(ctx, c, courseKey(courseID), func() (*Course, error) {
		return c.next.FetchCourse(ctx, courseID)
	})
}

// SubmitInstruction forwards ins and drops every cached account it may
// have changed, whether or not it succeeded.
func (c *CachedClient) SubmitInstruction(ctx context.Context, ins Instruction) (*Receipt, error) {
	r, err := c.next.SubmitInstruction(ctx, ins)

	keys := []string{balanceKey(ins.Learner), profileKey(ins.Learner)}
	if ins.CourseID != "" {
		keys = append(keys, enrollmentKey(ins.CourseID, ins.Learner))
	}
	if ins.Referrer != "" {
		keys = append(keys, balanceKey(ins.Referrer), profileKey(ins.Referrer))
	}
	if delErr := c.rdb.Del(ctx, keys...).Err(); delErr != nil {
		c.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(delErr))
	}

	return r, err
}

func readThrough[T any](ctx context.Context, c *CachedClient, key string, fetch func() (T, error)) (T, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if jerr := json.Unmarshal(raw, &v); jerr == nil {
			return v, nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err := fetch()
	if err != nil {
		return v, err
	}

	raw, err = json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}
