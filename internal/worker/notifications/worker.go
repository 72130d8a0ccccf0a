package notifications

import (
	"context"
	"time"
)

// Worker фоновый обработчик очереди уведомлений.
// Забирает пачку queued-записей (FOR UPDATE SKIP LOCKED, так что
// несколько инстансов сервиса не обрабатывают одну запись дважды),
// отправляет их и помечает результат. Неудачная попытка возвращает
// запись в очередь, пока не исчерпан лимит повторов.
type Worker struct {
	repo       NotificationRepository
	sender     Sender
	logger     Logger
	interval   time.Duration
	batchSize  int
	maxRetries int

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWorker создает новый воркер уведомлений
func NewWorker(
	repo NotificationRepository,
	sender Sender,
	logger Logger,
	interval time.Duration,
	batchSize int,
	maxRetries int,
) *Worker {
	return &Worker{
		repo:       repo,
		sender:     sender,
		logger:     logger,
		interval:   interval,
		batchSize:  batchSize,
		maxRetries: maxRetries,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start запускает цикл обработки в отдельной горутине
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("notifications worker: started (interval=%s, batch=%d)", w.interval, w.batchSize)

	go func() {
		defer close(w.doneCh)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.stopCh:
				w.logger.Info("notifications worker: stopped")
				return
			case <-ctx.Done():
				w.logger.Info("notifications worker: context cancelled")
				return
			case <-ticker.C:
				w.processBatch(ctx)
			}
		}
	}()
}

// Stop останавливает воркер и дожидается завершения текущей пачки
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

// processBatch забирает и обрабатывает одну пачку уведомлений
func (w *Worker) processBatch(ctx context.Context) {
	batch, err := w.repo.ClaimQueued(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("notifications worker: failed to claim batch: %v", err)
		return
	}
	if len(batch) == 0 {
		return
	}

	w.logger.Info("notifications worker: processing %d notifications", len(batch))

	for _, n := range batch {
		if err := w.sender.Send(ctx, n); err != nil {
			w.logger.Warn("notifications worker: send failed for id=%d (attempt %d): %v",
				n.ID, n.RetryCount+1, err)
			if err := w.repo.MarkFailedAttempt(ctx, n.ID, w.maxRetries); err != nil {
				w.logger.Error("notifications worker: failed to mark attempt for id=%d: %v", n.ID, err)
			}
			continue
		}

		if err := w.repo.MarkSent(ctx, n.ID); err != nil {
			w.logger.Error("notifications worker: failed to mark sent for id=%d: %v", n.ID, err)
		}
	}
}
