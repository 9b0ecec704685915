package search

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/estate-api/internal/events"
	"github.com/yourorg/estate-api/listing"
)

// Loader returns every listing; the store satisfies it.
type Loader interface {
	ListAll(ctx context.Context) ([]listing.Property, error)
}

type snapshot struct {
	props  []listing.Property
	byID   map[int64]int
	facets listing.Facets
	at     time.Time
}

// Index answers listing queries from an in-memory snapshot. The catalog is
// small enough that filtering it on every request is cheaper than a round
// trip to Postgres.
type Index struct {
	snap   atomic.Pointer[snapshot]
	Loader Loader
	Pub    events.Publisher
	Reload time.Duration

	// Swapped runs after a reload replaced the snapshot with different
	// listings. Anything derived from the old snapshot is outdated from
	// that point on, never earlier.
	Swapped func(ctx context.Context, reason string)
}

func NewIndex(props []listing.Property) *Index {
	i := &Index{}
	i.Replace(props)
	return i
}

// Replace swaps in a new set of listings. props must not be modified afterwards.
func (i *Index) Replace(props []listing.Property) {
	s := &snapshot{
		props:  props,
		byID:   make(map[int64]int, len(props)),
		facets: listing.ComputeFacets(props),
		at:     time.Now(),
	}
	for n, p := range props {
		s.byID[p.ID] = n
	}
	i.snap.Store(s)
}

func (i *Index) load() *snapshot {
	if s := i.snap.Load(); s != nil {
		return s
	}
	return &snapshot{byID: map[int64]int{}}
}

func (i *Index) Len() int { return len(i.load().props) }

func (i *Index) LoadedAt() time.Time { return i.load().at }

func (i *Index) Search(_ context.Context, q listing.Query) (listing.Result, error) {
	return listing.Apply(i.load().props, q), nil
}

func (i *Index) Facets(context.Context) (listing.Facets, error) {
	return i.load().facets, nil
}

func (i *Index) Get(_ context.Context, id int64) (listing.Property, error) {
	s := i.load()
	n, ok := s.byID[id]
	if !ok {
		return listing.Property{}, fmt.Errorf("property %d: %w", id, listing.ErrNotFound)
	}
	return s.props[n], nil
}

// Refresh reloads the snapshot from Loader.
func (i *Index) Refresh(ctx context.Context) error {
	_, err := i.reload(ctx, "refresh")
	return err
}

func (i *Index) reload(ctx context.Context, reason string) (bool, error) {
	if i.Loader == nil {
		return false, nil
	}
	props, err := i.Loader.ListAll(ctx)
	if err != nil {
		return false, fmt.Errorf("index reload: %w", err)
	}
	if slices.Equal(i.load().props, props) {
		return false, nil
	}
	i.Replace(props)
	if i.Swapped != nil {
		i.Swapped(ctx, reason)
	}
	return true, nil
}

// Run keeps the snapshot current: it reloads on every PropertiesChanged event
// and on the Reload interval, until ctx ends.
func (i *Index) Run(ctx context.Context) error {
	var sub <-chan events.PropertiesChanged
	if i.Pub != nil {
		sub = i.Pub.SubscribePropertiesChanged()
	}
	var tick <-chan time.Time
	if i.Reload > 0 && i.Loader != nil {
		t := time.NewTicker(i.Reload)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-sub:
			swapped, err := i.reload(ctx, evt.Source)
			if err != nil {
				zap.L().Warn("index refresh after event failed", zap.String("source", evt.Source), zap.Error(err))
				continue
			}
			zap.L().Info("index refreshed", zap.String("source", evt.Source), zap.Int("changed", len(evt.IDs)),
				zap.Int("size", i.Len()), zap.Bool("swapped", swapped))
		case <-tick:
			if _, err := i.reload(ctx, "interval"); err != nil {
				zap.L().Warn("periodic index refresh failed", zap.Error(err))
			}
		}
	}
}
