package hydrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/estate-api/listing"
)

// Fetcher returns one raw page of a feed; *listing.Client satisfies it.
type Fetcher interface {
	FetchPage(ctx context.Context, feedURL string, page, pageSize int) ([]byte, error)
}

type BulkConfig struct {
	Feeds          []string
	PageSize       int
	MaxPages       int
	Interval       time.Duration
	Pause          time.Duration
	RequestTimeout time.Duration
	Provider       string
}

// BulkJob imports every configured partner feed page by page.
type BulkJob struct {
	Client   Fetcher
	Hydrator *Hydrator
	Logger   *zap.Logger
	Config   BulkConfig
}

func (j *BulkJob) log() *zap.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return zap.L()
}

func (j *BulkJob) validate() error {
	if j == nil {
		return errors.New("nil bulk job")
	}
	if j.Client == nil {
		return errors.New("import job missing client")
	}
	if !j.Hydrator.Enabled() {
		return errors.New("import job requires hydrator with store")
	}
	if len(j.Config.Feeds) == 0 {
		return errors.New("import job requires at least one feed")
	}
	if j.Config.Provider == "" {
		j.Config.Provider = "partner-feed"
	}
	return nil
}

// Run imports once, then again Interval after each pass finishes, so a slow
// pass delays the next one instead of stacking up. Without an Interval it is
// RunOnce. Pass failures are logged; only cancellation ends the loop.
func (j *BulkJob) Run(ctx context.Context) error {
	if err := j.validate(); err != nil {
		return err
	}
	interval := j.Config.Interval
	if interval <= 0 {
		return j.RunOnce(ctx)
	}
	log := j.log().With(zap.Duration("interval", interval), zap.Int("feeds", len(j.Config.Feeds)))
	log.Info("import job starting")

	timer := time.NewTimer(0)
	defer timer.Stop()
	for pass := 1; ; pass++ {
		select {
		case <-ctx.Done():
			log.Info("import job stopping", zap.Int("passes", pass-1))
			return nil
		case <-timer.C:
		}
		started := time.Now()
		err := j.RunOnce(ctx)
		switch {
		case ctx.Err() != nil:
			continue
		case err != nil:
			log.Warn("import pass failed", zap.Int("pass", pass), zap.Error(err))
		default:
			log.Debug("import pass done", zap.Int("pass", pass), zap.Duration("took", time.Since(started)))
		}
		timer.Reset(interval)
	}
}

// RunOnce imports each feed once. A quota error ends the run at once; other
// per-feed failures are joined and returned after every feed was tried.
func (j *BulkJob) RunOnce(ctx context.Context) error {
	if err := j.validate(); err != nil {
		return err
	}
	var joined error
	for _, feed := range j.Config.Feeds {
		if err := j.ingestFeed(ctx, feed); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, listing.ErrQuotaExceeded) {
				return fmt.Errorf("feed %s: %w", feed, err)
			}
			joined = errors.Join(joined, err)
		}
	}
	return joined
}

func (j *BulkJob) ingestFeed(ctx context.Context, feed string) error {
	pageSize := j.Config.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	maxPages := j.Config.MaxPages
	if maxPages <= 0 {
		maxPages = 5
	}
	timeout := j.Config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	stored := 0
	for page := 1; page <= maxPages; page++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		raw, err := j.Client.FetchPage(reqCtx, feed, page, pageSize)
		cancel()
		if err != nil {
			if errors.Is(err, listing.ErrQuotaExceeded) {
				return err
			}
			return fmt.Errorf("feed %s page %d fetch: %w", feed, page, err)
		}
		props, skipped, err := listing.MapFeedPayload(raw)
		if err != nil {
			return fmt.Errorf("feed %s page %d map: %w", feed, page, err)
		}
		for _, s := range skipped {
			j.log().Warn("skipping feed record", zap.String("feed", feed), zap.Int("page", page), zap.Error(s))
		}
		received := len(props) + len(skipped)
		if received == 0 {
			if page == 1 {
				j.log().Info("feed returned no listings", zap.String("feed", feed))
			}
			break
		}
		n, err := j.Hydrator.Write(ctx, j.Config.Provider, feed, raw, props)
		if err != nil {
			return fmt.Errorf("feed %s page %d store: %w", feed, page, err)
		}
		stored += n
		if received < pageSize {
			break
		}
		if page < maxPages && j.Config.Pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(j.Config.Pause):
			}
		}
	}
	if stored > 0 {
		j.log().Info("feed imported", zap.String("feed", feed), zap.Int("stored", stored))
	}
	return nil
}
