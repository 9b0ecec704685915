package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/estate-api/listing"
)

// CreateInquiry stores in and returns it with ID and CreatedAt set. A
// property_id that does not exist yields listing.ErrNotFound.
func (s *Store) CreateInquiry(ctx context.Context, in listing.Inquiry) (listing.Inquiry, error) {
	in.ID = uuid.NewString()
	var preferred any
	if in.PreferredDate != "" {
		preferred = in.PreferredDate
	}
	query, args, err := psql.Insert("inquiries").
		Columns("id", "kind", "name", "email", "phone", "property_id", "message", "preferred_date").
		Values(in.ID, string(in.Kind), in.Name, in.Email, in.Phone, in.PropertyID, in.Message, preferred).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return in, fmt.Errorf("build inquiry insert: %w", err)
	}
	if err := s.db.QueryRow(ctx, query, args...).Scan(&in.CreatedAt); err != nil {
		return in, mapError(err, "insert inquiry")
	}
	return in, nil
}

// MemoryInquiries keeps inquiries in process for the catalog-only backend.
type MemoryInquiries struct {
	mu    sync.Mutex
	items []listing.Inquiry
	now   func() time.Time
}

func NewMemoryInquiries() *MemoryInquiries {
	return &MemoryInquiries{now: time.Now}
}

func (m *MemoryInquiries) CreateInquiry(_ context.Context, in listing.Inquiry) (listing.Inquiry, error) {
	in.ID = uuid.NewString()
	in.CreatedAt = m.now().UTC()
	m.mu.Lock()
	m.items = append(m.items, in)
	m.mu.Unlock()
	return in, nil
}

// List returns a copy of everything stored so far, oldest first.
func (m *MemoryInquiries) List() []listing.Inquiry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]listing.Inquiry, len(m.items))
	copy(out, m.items)
	return out
}
