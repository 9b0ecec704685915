package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourorg/estate-api/internal/cache"
	"github.com/yourorg/estate-api/internal/catalog"
	"github.com/yourorg/estate-api/internal/config"
	"github.com/yourorg/estate-api/internal/events"
	"github.com/yourorg/estate-api/internal/favorites"
	"github.com/yourorg/estate-api/internal/hydrator"
	"github.com/yourorg/estate-api/internal/redisx"
	"github.com/yourorg/estate-api/internal/search"
	"github.com/yourorg/estate-api/internal/store"
	"github.com/yourorg/estate-api/listing"
)

// App holds the wired components shared by the API server and estatectl.
type App struct {
	Config     config.Config
	Catalog    *catalog.Catalog
	Store      *store.Store // nil without a DSN
	Index      *search.Index
	Source     listing.Source
	SourceName string
	Pub        events.Publisher
	Hydrator   *hydrator.Hydrator
	KV         redisx.KV
	Cache      *cache.Cache
	Favorites  *favorites.Store
	Inquiries  listing.InquiryStore

	redis *redisx.Client
}

// New connects what cfg asks for. Postgres and Redis are optional: without
// a DSN listings come from the embedded catalog, and without a Redis
// address the cache and favourites live in process.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Catalog: cat, Pub: events.NewInMemory(256)}

	if cfg.Database.DSN != "" {
		st, err := store.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.Store = st
		a.Hydrator = &hydrator.Hydrator{Store: st, Pub: a.Pub}
		a.Inquiries = st
	} else {
		a.Inquiries = store.NewMemoryInquiries()
	}

	if cfg.Redis.Enabled() {
		rc := redisx.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			a.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		a.redis = rc
		a.KV = rc
	} else {
		a.KV = redisx.NewMemory()
	}
	a.Cache = cache.New(a.KV, cfg.Cache.TTL, cfg.Cache.StaleAfter)
	a.Favorites = favorites.New(a.KV, cfg.Cache.FavoritesTTL)
	return a, nil
}

// Prepare migrates and seeds the database when configured and builds the
// listing source the server answers from.
func (a *App) Prepare(ctx context.Context) error {
	a.Index = search.NewIndex(a.Catalog.PropertiesCopy())
	a.Index.Pub = a.Pub
	a.Source, a.SourceName = a.Index, "catalog"
	if a.Store == nil {
		return nil
	}

	if err := a.Store.Migrate(ctx); err != nil {
		return err
	}
	if a.Config.Database.SeedOnStart {
		if _, err := a.Seed(ctx); err != nil {
			return err
		}
	}
	a.Index.Loader = a.Store
	a.Index.Reload = a.Config.Cache.IndexReload
	if err := a.Index.Refresh(ctx); err != nil {
		return err
	}
	a.Source, a.SourceName = a.Index, "memory"
	if a.Config.Database.Backend == "postgres" {
		a.Source, a.SourceName = a.Store, "postgres"
	}
	zap.L().Info("listing source ready", zap.String("source", a.SourceName), zap.Int("indexed", a.Index.Len()))
	return nil
}

// Invalidation ties the cache version to the listing source and returns the
// invalidator to run, or nil when the index drives it. Against the index the
// version moves only after a reload swapped in new listings; bumping on the
// write event instead would let a miss cache the old snapshot under the new
// version.
func (a *App) Invalidation() *cache.Invalidator {
	inv := &cache.Invalidator{Cache: a.Cache, Pub: a.Pub}
	if a.Index != nil && a.Source == listing.Source(a.Index) {
		a.Index.Swapped = inv.Invalidate
		return nil
	}
	return inv
}

// InvalidateOnWrite bumps the cache version after every stored batch. The
// CLI uses it: its events never reach the server, which shares only Redis.
func (a *App) InvalidateOnWrite() {
	if a.Hydrator == nil {
		return
	}
	inv := &cache.Invalidator{Cache: a.Cache}
	a.Hydrator.AfterWrite = inv.Invalidate
}

// Seed writes the embedded catalog listings to the database.
func (a *App) Seed(ctx context.Context) (int, error) {
	if !a.Hydrator.Enabled() {
		return 0, errors.New("seed needs a database")
	}
	n, err := a.Hydrator.Write(ctx, "catalog", "embedded", nil, a.Catalog.PropertiesCopy())
	if err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	zap.L().Info("catalog seeded", zap.Int("properties", n))
	return n, nil
}

// Importer builds the partner feed job from the importer config.
func (a *App) Importer() (*hydrator.BulkJob, error) {
	ic := a.Config.Importer
	if len(ic.Feeds()) == 0 {
		return nil, errors.New("no import feeds configured")
	}
	if !a.Hydrator.Enabled() {
		return nil, errors.New("importer needs a database")
	}
	client := listing.NewClient(listing.ClientOptions{
		Token:          ic.Token,
		RequestsPerSec: ic.RequestsPerSec,
		Timeout:        ic.RequestTimeout,
	})
	return &hydrator.BulkJob{
		Client:   client,
		Hydrator: a.Hydrator,
		Config: hydrator.BulkConfig{
			Feeds:          ic.Feeds(),
			PageSize:       ic.PageSize,
			MaxPages:       ic.MaxPages,
			Interval:       ic.Interval,
			Pause:          ic.Pause,
			RequestTimeout: ic.RequestTimeout,
			Provider:       ic.Provider,
		},
	}, nil
}

// Ping checks the external dependencies that are configured.
func (a *App) Ping(ctx context.Context) error {
	var errs []error
	if a.Store != nil {
		if err := a.Store.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if err := a.KV.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("redis: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.Store != nil {
		a.Store.Close()
	}
}
