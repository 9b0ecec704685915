package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpv1 "github.com/yourorg/estate-api/http/v1"
	"github.com/yourorg/estate-api/internal/config"
	"github.com/yourorg/estate-api/internal/events"
	"github.com/yourorg/estate-api/internal/hydrator"
	"github.com/yourorg/estate-api/internal/store"
	"github.com/yourorg/estate-api/listing"
)

func TestApp_MemoryOnly(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, config.Config{})
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Prepare(ctx))
	assert.Equal(t, "catalog", a.SourceName)
	assert.IsType(t, &store.MemoryInquiries{}, a.Inquiries)
	assert.NoError(t, a.Ping(ctx))

	res, err := a.Source.Search(ctx, listing.Query{})
	require.NoError(t, err)
	assert.Equal(t, 52, res.Total)

	_, err = a.Seed(ctx)
	assert.Error(t, err)

	_, err = a.Importer()
	assert.ErrorContains(t, err, "no import feeds")

	a.Config.Importer.FeedsRaw = "https://feeds.example.com/a"
	_, err = a.Importer()
	assert.ErrorContains(t, err, "needs a database")
}

// gatedLoader blocks ListAll until release is closed.
type gatedLoader struct {
	props   []listing.Property
	entered chan struct{}
	release chan struct{}
}

func (g *gatedLoader) ListAll(ctx context.Context) ([]listing.Property, error) {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	select {
	case <-g.release:
		return g.props, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type memWriter struct{ batches []store.Batch }

func (m *memWriter) UpsertProperties(_ context.Context, b store.Batch) (int, error) {
	m.batches = append(m.batches, b)
	return len(b.Properties), nil
}

func homes(n int) []listing.Property {
	out := make([]listing.Property, n)
	for i := range out {
		out[i] = listing.Property{ID: int64(i + 1), Title: "Home", Type: listing.TypeVilla, Price: int64(i+1) * 1000000}
	}
	return out
}

func getTotal(t *testing.T, h http.Handler) (string, int) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/listings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Source string `json:"source"`
		Data   struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Source, body.Data.Total
}

// A miss served while the index is still reloading must not outlive the reload.
func TestApp_CacheVersionFollowsIndexSwap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a, err := New(ctx, config.Config{})
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Prepare(ctx))

	a.Index.Replace(homes(3))
	loader := &gatedLoader{props: homes(4), entered: make(chan struct{}, 1), release: make(chan struct{})}
	a.Index.Loader = loader
	assert.Nil(t, a.Invalidation(), "the index drives invalidation")

	r := chi.NewRouter()
	httpv1.RegisterListings(r, httpv1.ListingsDeps{Cache: a.Cache, Source: a.Source, SourceName: a.SourceName})

	done := make(chan error, 1)
	go func() { done <- a.Index.Run(ctx) }()
	require.Eventually(t, func() bool {
		a.Pub.PublishPropertiesChanged(ctx, events.PropertiesChanged{IDs: []int64{4}, Source: "test"})
		select {
		case <-loader.entered:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	from, total := getTotal(t, r)
	assert.Equal(t, "fresh", from)
	assert.Equal(t, 3, total)
	v, err := a.Cache.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, v, "version must not move before the swap")

	close(loader.release)
	require.Eventually(t, func() bool {
		v, err := a.Cache.Version(ctx)
		return err == nil && v == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 4, a.Index.Len())

	from, total = getTotal(t, r)
	assert.Equal(t, "fresh", from)
	assert.Equal(t, 4, total)
	from, total = getTotal(t, r)
	assert.Equal(t, "cache", from)
	assert.Equal(t, 4, total)

	cancel()
	assert.NoError(t, <-done)
}

func TestApp_InvalidationFollowsEventsForStore(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, config.Config{})
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Prepare(ctx))

	a.Source = &store.Store{}
	inv := a.Invalidation()
	require.NotNil(t, inv)
	assert.Nil(t, a.Index.Swapped)
}

func TestApp_SeedBumpsCacheVersion(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, config.Config{})
	require.NoError(t, err)
	defer a.Close()

	w := &memWriter{}
	a.Hydrator = &hydrator.Hydrator{Store: w, Pub: a.Pub}
	a.InvalidateOnWrite()

	n, err := a.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 52, n)
	require.Len(t, w.batches, 1)

	v, err := a.Cache.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}
