package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	httpapi "github.com/yourorg/estate-api/http"
	"github.com/yourorg/estate-api/internal/cache"
	"github.com/yourorg/estate-api/internal/refresh"
	"github.com/yourorg/estate-api/listing"
)

type ListingsDeps struct {
	Cache  *cache.Cache
	Source listing.Source
	// Refetch schedules a background refill of a stale entry.
	Refetch func(j refresh.Job) bool
	// SourceName labels freshly computed entries, e.g. "memory" or "postgres".
	SourceName string
}

type listingsResponse struct {
	OK    bool          `json:"ok"`
	From  string        `json:"source"`
	Stale bool          `json:"stale"`
	Key   string        `json:"key,omitempty"`
	Meta  *cache.Meta   `json:"meta,omitempty"`
	Query listing.Query `json:"query"`
	Data  listing.Page  `json:"data"`
}

func RegisterListings(r chi.Router, d ListingsDeps) {
	r.Route("/v1/listings", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			q, err := listing.ParseQuery(req.URL.Query())
			if err != nil {
				httpapi.WriteErr(w, req, err)
				return
			}
			serve(w, req, d, q)
		})
	})
}

func serve(w http.ResponseWriter, req *http.Request, d ListingsDeps, q listing.Query) {
	ctx := req.Context()
	if d.Cache == nil {
		direct(w, req, d, q, "")
		return
	}
	key, err := d.Cache.Key(ctx, q)
	if err != nil {
		zap.L().Warn("cache unavailable, searching directly", zap.Error(err))
		direct(w, req, d, q, "")
		return
	}

	env, ok, err := d.Cache.Get(ctx, key)
	if err != nil {
		zap.L().Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		stale := env.Stale(timeNow())
		// serve cached immediately; refill in the background
		if stale && d.Refetch != nil {
			d.Refetch(refresh.Job{Key: key, Query: q})
		}
		meta := env.Meta
		render.JSON(w, req, listingsResponse{OK: true, From: "cache", Stale: stale, Key: key, Meta: &meta, Query: q, Data: env.Data.Page()})
		return
	}

	// Cache miss: take a short lock to avoid stampedes. Without it, answer
	// directly and leave the write to the lock holder.
	locked, err := d.Cache.Lock(ctx, key)
	if err != nil || !locked {
		direct(w, req, d, q, key)
		return
	}
	defer d.Cache.Unlock(context.WithoutCancel(ctx), key)

	res, err := d.Source.Search(ctx, q)
	if err != nil {
		httpapi.WriteErr(w, req, err)
		return
	}
	env, err = d.Cache.Put(ctx, key, res, d.sourceName())
	if err != nil {
		zap.L().Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	meta := env.Meta
	render.JSON(w, req, listingsResponse{OK: true, From: "fresh", Key: key, Meta: &meta, Query: q, Data: res.Page()})
}

func direct(w http.ResponseWriter, req *http.Request, d ListingsDeps, q listing.Query, key string) {
	res, err := d.Source.Search(req.Context(), q)
	if err != nil {
		httpapi.WriteErr(w, req, err)
		return
	}
	render.JSON(w, req, listingsResponse{OK: true, From: "direct", Key: key, Query: q, Data: res.Page()})
}

func (d ListingsDeps) sourceName() string {
	if d.SourceName == "" {
		return "source"
	}
	return d.SourceName
}

// RefreshFunc recomputes a cache entry; it is the refresher's job handler.
func RefreshFunc(c *cache.Cache, src listing.Source, sourceName string) func(ctx context.Context, j refresh.Job) {
	return func(ctx context.Context, j refresh.Job) {
		res, err := src.Search(ctx, j.Query)
		if err != nil {
			zap.L().Warn("background refresh failed", zap.String("key", j.Key), zap.Error(err))
			return
		}
		if _, err := c.Put(ctx, j.Key, res, sourceName); err != nil {
			zap.L().Warn("background refresh write failed", zap.String("key", j.Key), zap.Error(err))
		}
	}
}

var timeNow = time.Now
