package redisx

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"time"
)

var errWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

type entry struct {
	val     string
	set     map[string]struct{}
	expires time.Time
}

// Memory is an in-process KV with Redis semantics for the commands in KV.
// It backs the cache and favourites when no Redis address is configured.
type Memory struct {
	mu   sync.Mutex
	data map[string]*entry
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]*entry), now: time.Now}
}

// lookup returns the live entry for key, evicting it if expired. Callers hold mu.
func (m *Memory) lookup(key string) *entry {
	e, ok := m.data[key]
	if !ok {
		return nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.data, key)
		return nil
	}
	return e
}

func (m *Memory) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.lookup(key)
	if e == nil {
		return "", Nil
	}
	if e.set != nil {
		return "", errWrongType
	}
	return e.val, nil
}

func (m *Memory) Set(_ context.Context, key string, val string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = &entry{val: val, expires: m.expiry(ttl)}
	return nil
}

func (m *Memory) SetNX(_ context.Context, key string, val string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookup(key) != nil {
		return false, nil
	}
	m.data[key] = &entry{val: val, expires: m.expiry(ttl)}
	return true, nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.lookup(key)
	if e == nil {
		m.data[key] = &entry{val: "1"}
		return 1, nil
	}
	if e.set != nil {
		return 0, errWrongType
	}
	n, err := strconv.ParseInt(e.val, 10, 64)
	if err != nil {
		return 0, errors.New("ERR value is not an integer or out of range")
	}
	n++
	e.val = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *Memory) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.lookup(key); e != nil {
		if ttl <= 0 {
			delete(m.data, key)
			return nil
		}
		e.expires = m.expiry(ttl)
	}
	return nil
}

func (m *Memory) setFor(key string, create bool) (*entry, error) {
	e := m.lookup(key)
	if e == nil {
		if !create {
			return nil, nil
		}
		e = &entry{set: make(map[string]struct{})}
		m.data[key] = e
	}
	if e.set == nil {
		return nil, errWrongType
	}
	return e, nil
}

func (m *Memory) SAdd(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.setFor(key, true)
	if err != nil {
		return err
	}
	for _, mem := range members {
		e.set[mem] = struct{}{}
	}
	return nil
}

func (m *Memory) SRem(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.setFor(key, false)
	if err != nil || e == nil {
		return err
	}
	for _, mem := range members {
		delete(e.set, mem)
	}
	if len(e.set) == 0 {
		delete(m.data, key)
	}
	return nil
}

// SMembers returns members sorted; Redis leaves the order unspecified.
func (m *Memory) SMembers(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.setFor(key, false)
	if err != nil || e == nil {
		return []string{}, err
	}
	out := make([]string, 0, len(e.set))
	for mem := range e.set {
		out = append(out, mem)
	}
	slices.Sort(out)
	return out, nil
}

func (m *Memory) SIsMember(_ context.Context, key string, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.setFor(key, false)
	if err != nil || e == nil {
		return false, err
	}
	_, ok := e.set[member]
	return ok, nil
}
