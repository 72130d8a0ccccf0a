package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
)

type fakeQueue struct {
	mu    sync.Mutex
	items map[int64]*domain.Notification
}

func newFakeQueue(items ...*domain.Notification) *fakeQueue {
	q := &fakeQueue{items: map[int64]*domain.Notification{}}
	for _, n := range items {
		q.items[n.ID] = n
	}
	return q
}

func (q *fakeQueue) ClaimQueued(ctx context.Context, limit int) ([]*domain.Notification, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*domain.Notification
	for _, n := range q.items {
		if len(out) >= limit {
			break
		}
		if n.Status == domain.NotificationQueued {
			n.Status = domain.NotificationProcessing
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (q *fakeQueue) MarkSent(ctx context.Context, id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	n, ok := q.items[id]
	if !ok {
		return errors.New("not found")
	}
	now := time.Now()
	n.Status = domain.NotificationSent
	n.SentAt = &now
	return nil
}

func (q *fakeQueue) MarkFailedAttempt(ctx context.Context, id int64, maxRetries int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	n, ok := q.items[id]
	if !ok {
		return errors.New("not found")
	}
	n.RetryCount++
	if n.RetryCount >= maxRetries {
		n.Status = domain.NotificationFailed
	} else {
		n.Status = domain.NotificationQueued
	}
	return nil
}

type fakeSender struct {
	mu       sync.Mutex
	sent     []int64
	failIDs  map[int64]int // id -> сколько первых попыток завалить
	attempts map[int64]int
}

func newFakeSender() *fakeSender {
	return &fakeSender{failIDs: map[int64]int{}, attempts: map[int64]int{}}
}

func (s *fakeSender) Send(ctx context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[n.ID]++
	if s.attempts[n.ID] <= s.failIDs[n.ID] {
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, n.ID)
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func queued(id int64) *domain.Notification {
	return &domain.Notification{
		ID: id, UserID: 10, BookingID: 1,
		Channel: "email", Type: "booking_confirmation",
		Status: domain.NotificationQueued,
	}
}

func TestProcessBatch_SendsQueued(t *testing.T) {
	q := newFakeQueue(queued(1), queued(2))
	sender := newFakeSender()
	w := NewWorker(q, sender, nopLogger{}, time.Minute, 10, 3)

	w.processBatch(context.Background())

	assert.ElementsMatch(t, []int64{1, 2}, sender.sent)
	assert.Equal(t, domain.NotificationSent, q.items[1].Status)
	assert.Equal(t, domain.NotificationSent, q.items[2].Status)
	require.NotNil(t, q.items[1].SentAt)
}

func TestProcessBatch_RespectsBatchSize(t *testing.T) {
	q := newFakeQueue(queued(1), queued(2), queued(3))
	sender := newFakeSender()
	w := NewWorker(q, sender, nopLogger{}, time.Minute, 2, 3)

	w.processBatch(context.Background())

	assert.Len(t, sender.sent, 2)
}

// Неудачная попытка возвращает запись в очередь; когда попытки
// исчерпаны, запись помечается failed и больше не забирается.
func TestProcessBatch_RetryThenFail(t *testing.T) {
	q := newFakeQueue(queued(1))
	sender := newFakeSender()
	sender.failIDs[1] = 10 // падает всегда
	w := NewWorker(q, sender, nopLogger{}, time.Minute, 10, 2)

	w.processBatch(context.Background())
	assert.Equal(t, domain.NotificationQueued, q.items[1].Status)
	assert.Equal(t, 1, q.items[1].RetryCount)

	w.processBatch(context.Background())
	assert.Equal(t, domain.NotificationFailed, q.items[1].Status)

	// failed-запись не забирается в следующую пачку
	w.processBatch(context.Background())
	assert.Equal(t, 2, sender.attempts[1])
}

func TestProcessBatch_RetrySucceedsOnSecondAttempt(t *testing.T) {
	q := newFakeQueue(queued(1))
	sender := newFakeSender()
	sender.failIDs[1] = 1 // первая попытка падает
	w := NewWorker(q, sender, nopLogger{}, time.Minute, 10, 3)

	w.processBatch(context.Background())
	assert.Equal(t, domain.NotificationQueued, q.items[1].Status)

	w.processBatch(context.Background())
	assert.Equal(t, domain.NotificationSent, q.items[1].Status)
}

func TestStartStop(t *testing.T) {
	q := newFakeQueue(queued(1))
	sender := newFakeSender()
	w := NewWorker(q, sender, nopLogger{}, 5*time.Millisecond, 10, 3)

	w.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	w.Stop()

	assert.Contains(t, sender.sent, int64(1))
}
