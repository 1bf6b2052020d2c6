package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/edubuild-api/pkg/errors"
)

type memoryCacheRepo struct {
	values  map[string]interface{}
	ttl     map[string]time.Duration
	getErr  error
	deleted []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{values: map[string]interface{}{}, ttl: map[string]time.Duration{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*string)) = v.(string)
	return nil
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.values[key] = value
	m.ttl[key] = ttl
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	m.values = map[string]interface{}{}
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	ctx := context.Background()

	var out string
	hit, err := svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "k", "v", 0))
	assert.Equal(t, time.Minute, repo.ttl["k"])

	hit, err = svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v", out)

	require.NoError(t, svc.Invalidate(ctx, "projects:*"))
	assert.Equal(t, []string{"projects:*"}, repo.deleted)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, false)
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(ctx, "k", "v", 0))
	assert.Empty(t, repo.values)
	require.NoError(t, svc.Invalidate(ctx, "projects:*"))
	assert.Empty(t, repo.deleted)

	var nilSvc *CacheService
	hit, err := nilSvc.Get(ctx, "k", new(string))
	assert.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.getErr = errors.New("connection refused")
	svc := NewCacheService(repo, nil, 0, nil, true)

	hit, err := svc.Get(context.Background(), "k", new(string))
	assert.Error(t, err)
	assert.False(t, hit)
}
