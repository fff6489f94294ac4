package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/admission-tracker/internal/logger"
	"alfredoptarigan/admission-tracker/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(analysisID uuid.UUID)
}

type worker struct {
	analyses     repositories.CVAnalysisRepository
	analyzer     CVAnalyzer
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	log          logger.Logger
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

func NewWorker(
	analyses repositories.CVAnalysisRepository,
	analyzer CVAnalyzer,
	concurrency int,
	pollInterval time.Duration,
	log logger.Logger,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &worker{
		analyses:     analyses,
		analyzer:     analyzer,
		jobQueue:     make(chan uuid.UUID, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		log:          log,
		stopChan:     make(chan struct{}),
	}
}

func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting cv worker", map[string]interface{}{"concurrency": w.concurrency})

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollQueuedJobs(ctx)
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping cv worker", nil)
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("cv worker stopped", nil)
	})
}

func (w *worker) EnqueueJob(analysisID uuid.UUID) {
	select {
	case w.jobQueue <- analysisID:
		w.log.Debug("job enqueued", map[string]interface{}{"analysis_id": analysisID.String()})
	case <-w.stopChan:
		w.log.Warn("worker stopped, job left queued", map[string]interface{}{"analysis_id": analysisID.String()})
	default:
		// the poller picks it up later
		w.log.Warn("job queue full, job left queued", map[string]interface{}{"analysis_id": analysisID.String()})
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.WithFields(map[string]interface{}{"worker": workerID})

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case analysisID := <-w.jobQueue:
			if err := w.analyzer.Analyze(ctx, analysisID); err != nil {
				log.WithError(err).Warn("job failed", map[string]interface{}{"analysis_id": analysisID.String()})
			}
		}
	}
}

// pollQueuedJobs re-enqueues jobs still queued in the database, e.g. after a
// restart.
func (w *worker) pollQueuedJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			queued, err := w.analyses.FindQueued(ctx, 10)
			if err != nil {
				w.log.WithError(err).Warn("failed to fetch queued jobs", nil)
				continue
			}
			if len(queued) > 0 {
				w.log.Info("re-enqueueing queued jobs", map[string]interface{}{"count": len(queued)})
			}
			for _, job := range queued {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
