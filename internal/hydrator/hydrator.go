package hydrator

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourorg/estate-api/internal/canon"
	"github.com/yourorg/estate-api/internal/events"
	"github.com/yourorg/estate-api/internal/store"
	"github.com/yourorg/estate-api/listing"
)

// Writer persists a batch of listings; *store.Store satisfies it.
type Writer interface {
	UpsertProperties(ctx context.Context, b store.Batch) (int, error)
}

type Hydrator struct {
	Store Writer
	Pub   events.Publisher
	// AfterWrite runs synchronously once a batch is stored, for callers
	// that have no subscriber on Pub.
	AfterWrite func(ctx context.Context, source string)
}

func (h *Hydrator) Enabled() bool { return h != nil && h.Store != nil }

// Write stores props and announces the change. Records sharing a canonical
// title and location with an earlier record in the same batch are dropped,
// since partner feeds republish the same home under fresh ids. Records with
// neither title nor location have no key and are always kept.
func (h *Hydrator) Write(ctx context.Context, provider, endpoint string, raw []byte, props []listing.Property) (int, error) {
	if !h.Enabled() || len(props) == 0 {
		return 0, nil
	}
	seen := make(map[string]bool, len(props))
	batch := store.Batch{Provider: provider, Endpoint: endpoint, Payload: raw}
	for _, p := range props {
		k := canon.Key(p.Title, p.Location)
		if k != "" && seen[k] {
			zap.L().Debug("skipping duplicate listing", zap.String("provider", provider), zap.Int64("id", p.ID), zap.String("key", k))
			continue
		}
		seen[k] = true
		batch.Properties = append(batch.Properties, p)
	}

	n, err := h.Store.UpsertProperties(ctx, batch)
	if err != nil {
		return 0, err
	}
	if h.Pub != nil {
		ids := make([]int64, len(batch.Properties))
		for i, p := range batch.Properties {
			ids[i] = p.ID
		}
		h.Pub.PublishPropertiesChanged(ctx, events.PropertiesChanged{IDs: ids, Source: provider})
	}
	if h.AfterWrite != nil {
		h.AfterWrite(ctx, provider)
	}
	return n, nil
}
