package queue

import (
	"errors"
	"sync"
	"testing"
	"time"

	"salesdash/server/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func history(urls ...string) []models.CopyHistory {
	batch := make([]models.CopyHistory, len(urls))
	for i, u := range urls {
		batch[i] = models.CopyHistory{ID: u, PropertyURL: u}
	}
	return batch
}

func TestNewHistoryQueue(t *testing.T) {
	q := NewHistoryQueue(10, logrus.New())
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())
}

func TestHistoryQueue_Push(t *testing.T) {
	q := NewHistoryQueue(2, logrus.New())

	err := q.Push(history("test1"))
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	require.NoError(t, q.Push(history("test2")))
	err = q.Push(history("test3"))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 2, q.Len())

	require.NoError(t, q.Close())
	err = q.Push(history("test4"))
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestHistoryQueue_Subscribe(t *testing.T) {
	q := NewHistoryQueue(10, logrus.New())

	var processed []models.CopyHistory
	var mu sync.Mutex
	q.Subscribe(func(batch []models.CopyHistory) error {
		mu.Lock()
		processed = append(processed, batch...)
		mu.Unlock()
		return nil
	})
	q.Start()

	require.NoError(t, q.Push(history("test1", "test2")))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(processed) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, "test1", processed[0].PropertyURL)
	assert.Equal(t, "test2", processed[1].PropertyURL)
	mu.Unlock()

	require.NoError(t, q.Close())
}

func TestHistoryQueue_Close(t *testing.T) {
	q := NewHistoryQueue(10, logrus.New())
	q.Start()

	assert.NoError(t, q.Close())
	assert.True(t, q.IsClosed())

	// second close is a no-op
	assert.NoError(t, q.Close())
}

func TestHistoryQueue_CloseWithoutStart(t *testing.T) {
	q := NewHistoryQueue(10, logrus.New())
	assert.NoError(t, q.Close())

	// Start after Close must not spawn a goroutine
	q.Start()
}

func TestHistoryQueue_CloseDrainsAcceptedBatches(t *testing.T) {
	q := NewHistoryQueue(10, logrus.New())

	release := make(chan struct{})
	var mu sync.Mutex
	var delivered int
	q.Subscribe(func(batch []models.CopyHistory) error {
		<-release
		mu.Lock()
		delivered += len(batch)
		mu.Unlock()
		return nil
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Push(history("a")))
	}
	q.Start()
	close(release)

	require.NoError(t, q.Close())
	mu.Lock()
	assert.Equal(t, 3, delivered)
	mu.Unlock()
}

func TestHistoryQueue_EveryHandlerSeesEachBatch(t *testing.T) {
	q := NewHistoryQueue(10, logrus.New())

	var wg sync.WaitGroup
	var mu sync.Mutex
	calls := 0
	for i := 0; i < 3; i++ {
		wg.Add(1)
		q.Subscribe(func(batch []models.CopyHistory) error {
			mu.Lock()
			calls++
			mu.Unlock()
			wg.Done()
			// a failing handler does not stop the others
			return errors.New("handler failed")
		})
	}
	q.Start()

	require.NoError(t, q.Push(history("test")))
	wg.Wait()

	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()
	require.NoError(t, q.Close())
}
