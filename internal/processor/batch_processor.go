package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"salesdash/server/config"
	"salesdash/server/internal/database"
	"salesdash/server/internal/models"
	"salesdash/server/internal/queue"
)

// Recorder is told whether each chunk reached the store.
type Recorder interface {
	RecordHistoryBatch(ok bool)
}

// Invalidator drops cached history for a property once new copy is stored.
type Invalidator interface {
	InvalidateHistory(url string)
}

// BatchProcessor writes queued copy history to the store
type BatchProcessor struct {
	store       database.HistoryStore
	logger      *logrus.Logger
	config      *config.Config
	queue       *queue.HistoryQueue
	recorder    Recorder
	invalidator Invalidator
	once        sync.Once
	ctx         context.Context
	cancel      context.CancelFunc
}

type Option func(*BatchProcessor)

func WithRecorder(r Recorder) Option {
	return func(p *BatchProcessor) { p.recorder = r }
}

func WithInvalidator(i Invalidator) Option {
	return func(p *BatchProcessor) { p.invalidator = i }
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(store database.HistoryStore, q *queue.HistoryQueue, cfg *config.Config, logger *logrus.Logger, opts ...Option) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &BatchProcessor{
		store:  store,
		queue:  q,
		config: cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start subscribes the processor to its queue. Repeated calls are ignored.
func (p *BatchProcessor) Start() {
	p.once.Do(func() {
		p.queue.Subscribe(p.processBatch)
	})
}

// Stop aborts pending retries. Chunks already written stay written.
func (p *BatchProcessor) Stop() {
	p.cancel()
}

// processBatch writes batch in chunks of at most MaxBatchSize records, each
// in its own transaction with retries.
func (p *BatchProcessor) processBatch(batch []models.CopyHistory) error {
	size := p.config.BatchProcessing.MaxBatchSize
	if size <= 0 {
		size = len(batch)
	}

	var failed error
	for start := 0; start < len(batch); start += size {
		end := min(start+size, len(batch))
		if err := p.processChunk(batch[start:end]); err != nil {
			failed = err
		}
	}
	return failed
}

func (p *BatchProcessor) processChunk(chunk []models.CopyHistory) error {
	maxRetries := p.config.BatchProcessing.MaxRetries

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying history batch, attempt %d of %d", attempt, maxRetries)
			select {
			case <-p.ctx.Done():
				p.record(false)
				return fmt.Errorf("history batch abandoned: %w", p.ctx.Err())
			case <-time.After(p.config.BatchProcessing.RetryDelay):
			}
		}

		if err = p.store.SaveCopyHistory(p.ctx, chunk); err == nil {
			p.logger.Infof("Successfully stored batch of %d copy history records", len(chunk))
			p.record(true)
			p.invalidate(chunk)
			return nil
		}

		p.logger.WithError(err).Error("History batch failed")
	}

	p.record(false)
	return fmt.Errorf("failed to process batch after %d attempts: %w", maxRetries+1, err)
}

func (p *BatchProcessor) record(ok bool) {
	if p.recorder != nil {
		p.recorder.RecordHistoryBatch(ok)
	}
}

func (p *BatchProcessor) invalidate(chunk []models.CopyHistory) {
	if p.invalidator == nil {
		return
	}
	seen := make(map[string]bool, len(chunk))
	for _, h := range chunk {
		if !seen[h.PropertyURL] {
			seen[h.PropertyURL] = true
			p.invalidator.InvalidateHistory(h.PropertyURL)
		}
	}
}
