package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"mailflow/editor"
)

// DraftSweeper clears drafts that have not been touched for MaxAge.
type DraftSweeper struct {
	Drafts   *editor.DraftStore
	MaxAge   time.Duration
	Interval time.Duration
	Logger   *logrus.Entry

	now func() time.Time
}

func NewDraftSweeper(drafts *editor.DraftStore, maxAge, interval time.Duration, logger *logrus.Entry) *DraftSweeper {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &DraftSweeper{
		Drafts:   drafts,
		MaxAge:   maxAge,
		Interval: interval,
		Logger:   logger.WithField("component", "draft_sweeper"),
		now:      time.Now,
	}
}

// Start sweeps once right away and then every Interval until ctx is done.
func (ds *DraftSweeper) Start(ctx context.Context) {
	ds.Logger.WithField("interval", ds.Interval).Info("Draft sweeper started")
	ds.SweepOnce()

	ticker := time.NewTicker(ds.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ds.Logger.Info("Draft sweeper shutting down...")
			return
		case <-ticker.C:
			ds.SweepOnce()
		}
	}
}

// SweepOnce clears stale and unreadable drafts and returns how many were
// removed.
func (ds *DraftSweeper) SweepOnce() int {
	cutoff := ds.now().Add(-ds.MaxAge)
	removed := 0
	for _, flowID := range ds.Drafts.Flows() {
		draft := ds.Drafts.Read(flowID)
		if draft != nil && (ds.MaxAge <= 0 || draft.UpdatedAt.After(cutoff)) {
			continue
		}
		ds.Drafts.Clear(flowID)
		removed++
		ds.Logger.WithField("flow_id", flowID).Debug("draft removed")
	}
	if removed > 0 {
		ds.Logger.WithField("removed", removed).Info("stale drafts removed")
	}
	return removed
}
