package cache

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devevents/internal/domain"
)

// fakeRedis answers GET, SET, DEL and SCAN from a map without a server.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func (f *fakeRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, io.ErrClosedPipe
	}
}

func (f *fakeRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (f *fakeRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		args := cmd.Args()
		key := ""
		if len(args) > 1 {
			key, _ = args[1].(string)
		}
		switch c := cmd.(type) {
		case *redis.StringCmd:
			v, ok := f.data[key]
			if !ok {
				c.SetErr(redis.Nil)
				return redis.Nil
			}
			c.SetVal(v)
		case *redis.StatusCmd:
			switch v := args[2].(type) {
			case []byte:
				f.data[key] = string(v)
			case string:
				f.data[key] = v
			}
			c.SetVal("OK")
		case *redis.IntCmd:
			var n int64
			for _, a := range args[1:] {
				k, _ := a.(string)
				if _, ok := f.data[k]; ok {
					delete(f.data, k)
					n++
				}
			}
			c.SetVal(n)
		case *redis.ScanCmd:
			pattern := strings.TrimSuffix(args[3].(string), "*")
			var keys []string
			for k := range f.data {
				if strings.HasPrefix(k, pattern) {
					keys = append(keys, k)
				}
			}
			c.SetVal(keys, 0)
		}
		return nil
	}
}

func newFakeClient(t *testing.T) (*redis.Client, *fakeRedis) {
	t.Helper()
	fake := &fakeRedis{data: make(map[string]string)}
	rdb := redis.NewClient(&redis.Options{Addr: "fake:6379"})
	rdb.AddHook(fake)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, fake
}

type countingRepo struct {
	events      []*domain.Event
	slugCalls   int
	listCalls   int
	existsCalls int
}

func (r *countingRepo) Create(ctx context.Context, e *domain.Event) error {
	e.ID = "new"
	r.events = append(r.events, e)
	return nil
}

func (r *countingRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	for _, e := range r.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *countingRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	r.slugCalls++
	for _, e := range r.events {
		if e.Slug == slug {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *countingRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.existsCalls++
	_, err := r.GetByID(ctx, id)
	return err == nil, nil
}

func (r *countingRepo) List(ctx context.Context) ([]*domain.Event, error) {
	r.listCalls++
	return r.events, nil
}

func (r *countingRepo) ListSimilar(ctx context.Context, slug string, limit int) ([]*domain.Event, error) {
	return r.events, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEventRepository_GetBySlugIsCached(t *testing.T) {
	ctx := context.Background()
	rdb, fake := newFakeClient(t)
	next := &countingRepo{events: []*domain.Event{{ID: "e1", Title: "React Conf 2025", Slug: "react-conf-2025"}}}
	repo := NewEventRepository(next, rdb, time.Minute, quietLogger())

	first, err := repo.GetBySlug(ctx, "react-conf-2025")
	require.NoError(t, err)
	second, err := repo.GetBySlug(ctx, "react-conf-2025")
	require.NoError(t, err)

	assert.Equal(t, 1, next.slugCalls)
	assert.Equal(t, first.ID, second.ID)
	assert.Contains(t, fake.data, slugKey("react-conf-2025"))

	_, err = repo.GetBySlug(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotContains(t, fake.data, slugKey("missing"))
}

func TestEventRepository_CreateInvalidatesListings(t *testing.T) {
	ctx := context.Background()
	rdb, fake := newFakeClient(t)
	next := &countingRepo{}
	repo := NewEventRepository(next, rdb, time.Minute, quietLogger())

	_, err := repo.List(ctx)
	require.NoError(t, err)
	_, err = repo.ListSimilar(ctx, "x", 3)
	require.NoError(t, err)
	_, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next.listCalls)
	assert.Contains(t, fake.data, similarKey("x", 3))

	require.NoError(t, repo.Create(ctx, &domain.Event{Title: "New", Slug: "new"}))
	assert.NotContains(t, fake.data, keyList)
	assert.NotContains(t, fake.data, similarKey("x", 3))

	events, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next.listCalls)
	assert.Len(t, events, 1)
}

func TestEventRepository_ExistsBypassesCache(t *testing.T) {
	ctx := context.Background()
	rdb, fake := newFakeClient(t)
	next := &countingRepo{events: []*domain.Event{{ID: "e1", Slug: "a"}}}
	repo := NewEventRepository(next, rdb, time.Minute, quietLogger())

	for i := 0; i < 3; i++ {
		ok, err := repo.Exists(ctx, "e1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 3, next.existsCalls)
	assert.Empty(t, fake.data)
}

func TestEventRepository_FallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	next := &countingRepo{events: []*domain.Event{{ID: "e1", Slug: "a"}}}
	repo := NewEventRepository(next, rdb, time.Minute, quietLogger())

	e, err := repo.GetBySlug(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "e1", e.ID)

	events, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
