package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/dtu-portal/timetable-api/pkg/errors"
)

type cacheRepoStub struct {
	stored   map[string]interface{}
	setCalls int
	deleted  []string
	getErr   error
}

func (s *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	value, ok := s.stored[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.stored == nil {
		s.stored = make(map[string]interface{})
	}
	s.stored[key] = value
	s.setCalls++
	return nil
}

func (s *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.deleted = append(s.deleted, pattern)
	return nil
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := &cacheRepoStub{}
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	hit, err := svc.Get(context.Background(), "k", nil)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(context.Background(), "k", "v", 0))
	assert.Zero(t, repo.setCalls)
}

func TestCacheServiceNilReceiverSafe(t *testing.T) {
	var svc *CacheService

	assert.False(t, svc.Enabled())
	hit, err := svc.Get(context.Background(), "k", nil)
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, svc.Set(context.Background(), "k", "v", 0))
	require.NoError(t, svc.Invalidate(context.Background(), "k*"))
}

func TestCacheServiceMissIsNotAnError(t *testing.T) {
	svc := NewCacheService(&cacheRepoStub{}, nil, time.Minute, nil, true)

	var dest string
	hit, err := svc.Get(context.Background(), "absent", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := &cacheRepoStub{}
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	require.NoError(t, svc.Set(context.Background(), "k", "payload", 0))

	var dest string
	hit, err := svc.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "payload", dest)
}

func TestCacheServiceInvalidate(t *testing.T) {
	repo := &cacheRepoStub{}
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	require.NoError(t, svc.Invalidate(context.Background(), "timetable:grid:*"))
	require.Len(t, repo.deleted, 1)
	assert.Equal(t, "timetable:grid:*", repo.deleted[0])
}
