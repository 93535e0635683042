// Package watcher announces course list changes made by writers this process
// does not see, such as another server or the CLI sharing the same store.
package watcher

import (
	"context"
	"time"

	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/models"
)

// Stamper reads the last-updated stamp of the course list.
type Stamper interface {
	LastUpdated(ctx context.Context) (int64, bool, error)
}

// Announcer receives the notification.
type Announcer interface {
	Announce(msg models.WSMessage)
}

// Watcher polls the stamp and announces courses.changed when it moves. It
// compares stamps only, so two writes inside one interval yield a single
// announcement.
type Watcher struct {
	stamps   Stamper
	out      Announcer
	interval time.Duration
	log      *logger.Logger

	last int64
	seen bool
}

func New(stamps Stamper, out Announcer, interval time.Duration, log *logger.Logger) *Watcher {
	return &Watcher{
		stamps:   stamps,
		out:      out,
		interval: interval,
		log:      log.With("service", "Watcher"),
	}
}

// Run polls until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("course watcher started", "interval", w.interval.String())
	w.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Check reads the stamp once and reports whether it announced a change. The
// first successful read only records the baseline.
func (w *Watcher) Check(ctx context.Context) bool {
	stamp, ok, err := w.stamps.LastUpdated(ctx)
	if err != nil {
		w.log.Warn("failed to read course stamp", "error", err)
		return false
	}
	if !ok {
		stamp = 0
	}

	if !w.seen {
		w.last, w.seen = stamp, true
		return false
	}
	if stamp == w.last {
		return false
	}

	w.last = stamp
	w.out.Announce(models.WSMessage{
		Event:   models.EventCoursesChanged,
		Payload: models.WSCoursesPayload{UpdatedAt: stamp},
	})
	w.log.Debug("course list changed", "updated_at", stamp)
	return true
}
