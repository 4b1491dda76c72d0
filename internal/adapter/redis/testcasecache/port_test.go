package testcasecache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codeprep.net/internal/adapter/logging"
	"gitlab.com/codeprep.net/internal/adapter/memory"
	"gitlab.com/codeprep.net/internal/domain"
)

type countingRepo struct {
	*memory.TestCaseRepository
	lists int
}

func (r *countingRepo) ListByProblem(ctx context.Context, problemID string, filter domain.TestCaseFilter) ([]*domain.TestCase, error) {
	r.lists++
	return r.TestCaseRepository.ListByProblem(ctx, problemID, filter)
}

func newCache(t *testing.T) (*TestCaseCache, *countingRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	repo := &countingRepo{TestCaseRepository: memory.NewTestCaseRepository()}
	return NewTestCaseCache(repo, client, time.Minute, logging.NewNopLogger()), repo, mr
}

func TestReadThrough(t *testing.T) {
	cache, repo, mr := newCache(t)
	ctx := context.Background()
	require.NoError(t, cache.Create(ctx, domain.NewTestCase("p1", "1", "1", false, true)))

	first, err := cache.ListByProblem(ctx, "p1", domain.TestCaseFilter{QuickOnly: true})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, mr.Exists(keyPrefix+"p1:quick"))
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"p1:quick"))

	second, err := cache.ListByProblem(ctx, "p1", domain.TestCaseFilter{QuickOnly: true})
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, 1, repo.lists)
}

func TestWritesInvalidate(t *testing.T) {
	cache, repo, mr := newCache(t)
	ctx := context.Background()
	tc := domain.NewTestCase("p1", "1", "1", false, false)
	require.NoError(t, cache.Create(ctx, tc))

	_, err := cache.ListByProblem(ctx, "p1", domain.TestCaseFilter{})
	require.NoError(t, err)
	require.True(t, mr.Exists(keyPrefix+"p1:all"))

	tc.IsQuickTest = true
	require.NoError(t, cache.Update(ctx, tc))
	assert.False(t, mr.Exists(keyPrefix+"p1:all"))

	quick, err := cache.ListByProblem(ctx, "p1", domain.TestCaseFilter{QuickOnly: true})
	require.NoError(t, err)
	assert.Len(t, quick, 1)

	require.NoError(t, cache.Delete(ctx, tc.ID))
	assert.False(t, mr.Exists(keyPrefix+"p1:quick"))

	quick, err = cache.ListByProblem(ctx, "p1", domain.TestCaseFilter{QuickOnly: true})
	require.NoError(t, err)
	assert.Empty(t, quick)
	assert.Equal(t, 3, repo.lists)

	require.NoError(t, cache.CreateBatch(ctx, []*domain.TestCase{domain.NewTestCase("p1", "2", "2", false, true)}))
	assert.False(t, mr.Exists(keyPrefix+"p1:quick"))

	assert.Error(t, cache.Delete(ctx, uuid.New()))
}

func TestFallsBackWhenRedisIsDown(t *testing.T) {
	cache, repo, mr := newCache(t)
	ctx := context.Background()
	require.NoError(t, cache.Create(ctx, domain.NewTestCase("p1", "1", "1", false, false)))
	mr.Close()

	cases, err := cache.ListByProblem(ctx, "p1", domain.TestCaseFilter{})
	require.NoError(t, err)
	assert.Len(t, cases, 1)
	assert.Equal(t, 1, repo.lists)
}
