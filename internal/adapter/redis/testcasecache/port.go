package testcasecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

const (
	keyPrefix  = "testcases:problem:"
	defaultTTL = 5 * time.Minute
)

var _ secondary.TestCaseRepository = (*TestCaseCache)(nil)

// TestCaseCache is a read-through cache in front of a test case repository.
// Redis failures fall back to the wrapped repository.
type TestCaseCache struct {
	next        secondary.TestCaseRepository
	redisClient *redis.Client
	ttl         time.Duration
	logger      primary.Logger
}

func NewTestCaseCache(next secondary.TestCaseRepository, redisClient *redis.Client, ttl time.Duration, logger primary.Logger) *TestCaseCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &TestCaseCache{
		next:        next,
		redisClient: redisClient,
		ttl:         ttl,
		logger:      logger,
	}
}

func filterKey(filter domain.TestCaseFilter) string {
	switch {
	case filter.QuickOnly && filter.FullOnly:
		return "none"
	case filter.QuickOnly:
		return "quick"
	case filter.FullOnly:
		return "full"
	default:
		return "all"
	}
}

func cacheKey(problemID string, filter domain.TestCaseFilter) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, problemID, filterKey(filter))
}

func (c *TestCaseCache) ListByProblem(ctx context.Context, problemID string, filter domain.TestCaseFilter) ([]*domain.TestCase, error) {
	key := cacheKey(problemID, filter)
	data, err := c.redisClient.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cases []*domain.TestCase
		if err := json.Unmarshal(data, &cases); err == nil {
			return cases, nil
		}
		c.logger.Warn("Dropping undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Test case cache read failed", "key", key, "error", err)
	}

	cases, err := c.next.ListByProblem(ctx, problemID, filter)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cases)
	if err != nil {
		c.logger.Error("Failed to marshal test cases", "error", err)
		return cases, nil
	}
	if err := c.redisClient.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Test case cache write failed", "key", key, "error", err)
	}
	return cases, nil
}

func (c *TestCaseCache) Get(ctx context.Context, id uuid.UUID) (*domain.TestCase, error) {
	return c.next.Get(ctx, id)
}

func (c *TestCaseCache) Create(ctx context.Context, testCase *domain.TestCase) error {
	if err := c.next.Create(ctx, testCase); err != nil {
		return err
	}
	c.invalidate(ctx, testCase.ProblemID)
	return nil
}

func (c *TestCaseCache) CreateBatch(ctx context.Context, testCases []*domain.TestCase) error {
	if err := c.next.CreateBatch(ctx, testCases); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, tc := range testCases {
		if !seen[tc.ProblemID] {
			seen[tc.ProblemID] = true
			c.invalidate(ctx, tc.ProblemID)
		}
	}
	return nil
}

func (c *TestCaseCache) Update(ctx context.Context, testCase *domain.TestCase) error {
	if err := c.next.Update(ctx, testCase); err != nil {
		return err
	}
	c.invalidate(ctx, testCase.ProblemID)
	return nil
}

func (c *TestCaseCache) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := c.next.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	if existing != nil {
		c.invalidate(ctx, existing.ProblemID)
	}
	return nil
}

func (c *TestCaseCache) invalidate(ctx context.Context, problemID string) {
	keys := []string{
		cacheKey(problemID, domain.TestCaseFilter{}),
		cacheKey(problemID, domain.TestCaseFilter{QuickOnly: true}),
		cacheKey(problemID, domain.TestCaseFilter{FullOnly: true}),
	}
	if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Test case cache invalidation failed", "problemId", problemID, "error", err)
	}
}
