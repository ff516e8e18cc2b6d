package queue

import (
	"errors"
	"sync"

	"salesdash/server/internal/models"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Handler consumes one batch of generated copy.
type Handler func([]models.CopyHistory) error

// HistoryQueue is an in-memory queue of copy history batches waiting to be
// written to the store.
type HistoryQueue struct {
	items    chan []models.CopyHistory
	done     chan struct{}
	maxSize  int
	closed   bool
	started  bool
	mu       sync.RWMutex
	wg       sync.WaitGroup
	logger   *logrus.Logger
	handlers []Handler
}

// NewHistoryQueue creates a queue holding at most bufferSize batches
func NewHistoryQueue(bufferSize int, logger *logrus.Logger) *HistoryQueue {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &HistoryQueue{
		items:   make(chan []models.CopyHistory, bufferSize),
		done:    make(chan struct{}),
		maxSize: bufferSize,
		logger:  logger,
	}
}

// Push adds a batch without blocking. A full buffer returns ErrQueueFull.
func (q *HistoryQueue) Push(batch []models.CopyHistory) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- batch:
		q.logger.WithField("batch_size", len(batch)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler that is called for each batch
func (q *HistoryQueue) Subscribe(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins delivering batches. Calling it twice has no effect.
func (q *HistoryQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	q.wg.Add(1)
	go q.process()
}

func (q *HistoryQueue) process() {
	defer q.wg.Done()
	for {
		select {
		case <-q.done:
			q.drain()
			return
		case batch := <-q.items:
			q.processBatch(batch)
		}
	}
}

// drain delivers whatever was accepted before Close.
func (q *HistoryQueue) drain() {
	for {
		select {
		case batch := <-q.items:
			q.processBatch(batch)
		default:
			return
		}
	}
}

func (q *HistoryQueue) processBatch(batch []models.CopyHistory) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).WithField("batch_size", len(batch)).Error("Handler failed to process batch")
		}
	}
}

// Close stops accepting batches, delivers the ones already queued and waits
// for the delivery goroutine to exit.
func (q *HistoryQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

// Len returns the number of batches waiting
func (q *HistoryQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *HistoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
