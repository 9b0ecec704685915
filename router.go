package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
	"github.com/rs/cors"

	httpapi "github.com/yourorg/estate-api/http"
	httpv1 "github.com/yourorg/estate-api/http/v1"
	"github.com/yourorg/estate-api/internal/cache"
	"github.com/yourorg/estate-api/internal/catalog"
	"github.com/yourorg/estate-api/internal/config"
	"github.com/yourorg/estate-api/internal/favorites"
	"github.com/yourorg/estate-api/internal/logger"
	"github.com/yourorg/estate-api/internal/refresh"
	"github.com/yourorg/estate-api/listing"
)

type Deps struct {
	CORS       config.CORSConfig
	RateLimit  config.RateLimitConfig
	Catalog    *catalog.Catalog
	Source     listing.Source
	SourceName string
	Cache      *cache.Cache
	Refetch    func(j refresh.Job) bool
	Favorites  *favorites.Store
	Inquiries  listing.InquiryStore
	Ping       func(ctx context.Context) error
}

func BuildRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   config.SplitList(d.CORS.AllowedOrigins),
		AllowedMethods:   config.SplitList(d.CORS.AllowedMethods),
		AllowedHeaders:   config.SplitList(d.CORS.AllowedHeaders),
		ExposedHeaders:   []string{httpapi.SessionHeader},
		AllowCredentials: d.CORS.AllowCredentials,
		MaxAge:           d.CORS.MaxAge,
	}).Handler)
	requests, window := d.RateLimit.Requests, d.RateLimit.Window
	if requests <= 0 || window <= 0 {
		requests, window = 100, time.Minute
	}
	r.Use(httprate.LimitByIP(requests, window))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				httpapi.WriteError(w, req, http.StatusServiceUnavailable, "unhealthy", err.Error())
				return
			}
		}
		render.JSON(w, req, map[string]any{"ok": true, "source": d.SourceName})
	})

	httpapi.RegisterListings(r, httpapi.ListingsDeps{Source: d.Source, Favorites: d.Favorites})
	httpapi.RegisterSite(r, httpapi.SiteDeps{Catalog: d.Catalog})
	if d.Favorites != nil {
		httpapi.RegisterFavorites(r, httpapi.FavoritesDeps{Store: d.Favorites, Source: d.Source})
	}
	if d.Inquiries != nil {
		httpapi.RegisterInquiries(r, httpapi.InquiriesDeps{Store: d.Inquiries, Source: d.Source})
	}

	// v1 listings with cache + SWR
	httpv1.RegisterListings(r, httpv1.ListingsDeps{
		Cache:      d.Cache,
		Source:     d.Source,
		Refetch:    d.Refetch,
		SourceName: d.SourceName,
	})

	return r
}
