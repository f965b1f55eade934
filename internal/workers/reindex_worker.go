package workers

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/services"
	"golang.org/x/sync/errgroup"
)

// ReindexWorker refreshes catalog embeddings on a cron schedule.
type ReindexWorker struct {
	Embeddings  services.EmbeddingService
	Collections []string
	// Schedule is a five-field cron expression. Empty disables the schedule.
	Schedule string
	// RunTimeout bounds one full pass. Zero means no bound.
	RunTimeout time.Duration

	Logger *logrus.Logger

	cron *cron.Cron
}

func (w *ReindexWorker) Start(ctx context.Context) error {
	if w.Embeddings == nil {
		return errors.New("ReindexWorker missing dependency: Embeddings must be set")
	}
	if w.Logger == nil {
		w.Logger = logrus.New()
	}
	if len(w.Collections) == 0 {
		w.Collections = models.IndexableCollections
	}
	if w.Schedule == "" {
		w.Logger.Info("reindex schedule not set, worker idle")
		return nil
	}

	w.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	_, err := w.cron.AddFunc(w.Schedule, func() {
		runCtx := ctx
		if w.RunTimeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, w.RunTimeout)
			defer cancel()
		}
		if _, err := w.RunOnce(runCtx); err != nil {
			w.Logger.WithError(err).Error("scheduled reindex failed")
		}
	})
	if err != nil {
		return err
	}
	w.cron.Start()
	w.Logger.WithField("schedule", w.Schedule).Info("reindex worker started")

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for a running pass to return.
func (w *ReindexWorker) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
}

// RunOnce indexes every configured collection concurrently. Stats are returned
// in collection order, also for collections that failed.
func (w *ReindexWorker) RunOnce(ctx context.Context) ([]services.IndexStats, error) {
	cols := w.Collections
	if len(cols) == 0 {
		cols = models.IndexableCollections
	}
	stats := make([]services.IndexStats, len(cols))

	start := time.Now()
	g, gCtx := errgroup.WithContext(ctx)
	for i, col := range cols {
		g.Go(func() error {
			s, err := w.Embeddings.IndexCollection(gCtx, col)
			s.Collection = col
			stats[i] = s
			return err
		})
	}
	err := g.Wait()

	fields := logrus.Fields{"took_ms": time.Since(start).Milliseconds()}
	for _, s := range stats {
		fields[s.Collection+"_indexed"] = s.Indexed
		fields[s.Collection+"_failed"] = s.Failed
	}
	w.logger().WithFields(fields).Info("reindex pass finished")
	return stats, err
}

func (w *ReindexWorker) logger() *logrus.Logger {
	if w.Logger == nil {
		return logrus.StandardLogger()
	}
	return w.Logger
}
