package favorites

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/yourorg/estate-api/internal/redisx"
)

var ErrNoSession = errors.New("favorites: missing session")

// Store keeps one set of favourite listing ids per browser session. The
// set's TTL is refreshed on every write so idle sessions age out.
type Store struct {
	kv  redisx.KV
	ttl time.Duration
}

func New(kv redisx.KV, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Store{kv: kv, ttl: ttl}
}

func key(session string) string { return "favorites:" + session }

func (s *Store) Add(ctx context.Context, session string, id int64) error {
	if session == "" {
		return ErrNoSession
	}
	if err := s.kv.SAdd(ctx, key(session), strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("add favorite %d: %w", id, err)
	}
	return s.kv.Expire(ctx, key(session), s.ttl)
}

func (s *Store) Remove(ctx context.Context, session string, id int64) error {
	if session == "" {
		return ErrNoSession
	}
	if err := s.kv.SRem(ctx, key(session), strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("remove favorite %d: %w", id, err)
	}
	return nil
}

func (s *Store) Has(ctx context.Context, session string, id int64) (bool, error) {
	if session == "" {
		return false, nil
	}
	return s.kv.SIsMember(ctx, key(session), strconv.FormatInt(id, 10))
}

// Toggle flips id in the session's set and returns whether it is now a favourite.
func (s *Store) Toggle(ctx context.Context, session string, id int64) (bool, error) {
	has, err := s.Has(ctx, session, id)
	if err != nil {
		return false, fmt.Errorf("toggle favorite %d: %w", id, err)
	}
	if has {
		return false, s.Remove(ctx, session, id)
	}
	return true, s.Add(ctx, session, id)
}

// List returns the session's favourite ids in ascending order.
func (s *Store) List(ctx context.Context, session string) ([]int64, error) {
	if session == "" {
		return []int64{}, nil
	}
	members, err := s.kv.SMembers(ctx, key(session))
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
