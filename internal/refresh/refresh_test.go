package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRefresher_RunsAndDedupes(t *testing.T) {
	release := make(chan struct{})
	var ran atomic.Int32
	r := New(4, 1, func(ctx context.Context, j Job) {
		<-release
		ran.Add(1)
	})

	assert.True(t, r.Enqueue(Job{Key: "a"}))
	assert.False(t, r.Enqueue(Job{Key: "a"}), "duplicate key while in flight")
	assert.True(t, r.Enqueue(Job{Key: "b"}))

	close(release)
	r.Stop()
	assert.Equal(t, int32(2), ran.Load())
}

func TestRefresher_DropsWhenSaturated(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	r := New(1, 1, func(ctx context.Context, j Job) {
		once.Do(func() { close(started) })
		<-block
	})

	assert.True(t, r.Enqueue(Job{Key: "running"}))
	<-started
	assert.True(t, r.Enqueue(Job{Key: "queued"}))
	assert.False(t, r.Enqueue(Job{Key: "dropped"}))

	close(block)
	r.Stop()
}

func TestRefresher_StopIsIdempotent(t *testing.T) {
	r := New(1, 2, nil)
	r.Stop()
	r.Stop()
	assert.False(t, r.Enqueue(Job{Key: "late"}))
}
