package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/s3dt-tech/catalog-backend/internal/cfg"
	"github.com/s3dt-tech/catalog-backend/internal/usecase"
	"github.com/s3dt-tech/catalog-backend/pkg/jitter"
	"github.com/s3dt-tech/catalog-backend/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// JobWorker вычитывает задачи синхронизации из топика очереди и исполняет
// их через JobUC. Несколько воркеров читают один consumer group: задачи
// распределяются по партициям, offset коммитится после обработки.
type JobWorker struct {
	jobUC   usecase.JobUC
	logger  logger.Logger
	cfg     *cfg.KafkaCfg
	workers int
	stop    chan struct{}
	wg      sync.WaitGroup
}

func NewJobWorker(jobUC usecase.JobUC, logger logger.Logger, cfg *cfg.KafkaCfg, workers int) *JobWorker {
	if workers <= 0 {
		workers = 1
	}

	return &JobWorker{
		jobUC:   jobUC,
		logger:  logger,
		cfg:     cfg,
		workers: workers,
		stop:    make(chan struct{}),
	}
}

func (w *JobWorker) Start(ctx context.Context) {
	w.wg.Add(w.workers)
	for i := 0; i < w.workers; i++ {
		go func(id int) {
			defer w.wg.Done()
			w.run(ctx, id)
		}(i)
	}
}

func (w *JobWorker) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *JobWorker) run(ctx context.Context, workerID int) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        w.cfg.Brokers,
		GroupID:        w.cfg.GroupID,
		Topic:          w.cfg.Topic,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		MaxWait:        time.Second,
		CommitInterval: 0, // синхронный коммит после обработки
	})
	defer reader.Close()

	w.logger.Infof("job worker started. worker_id: %d, topic: %s, group: %s", workerID, w.cfg.Topic, w.cfg.GroupID)

	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		default:
		}

		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}

			attempt++
			backoff := jitter.ExponentialBackoff(time.Second, 30*time.Second, attempt, 0.2)
			w.logger.Warnf("fetch failed, retrying. worker_id: %d, attempt: %d, error: %v", workerID, attempt, err)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			}
			continue
		}
		attempt = 0

		jobID := string(msg.Value)
		if err := w.jobUC.Run(ctx, jobID); err != nil {
			// Задача записана как failed, повторная доставка не нужна.
			w.logger.Errorf(err, "job run failed. worker_id: %d, job_id: %s", workerID, jobID)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			w.logger.Warnf("commit failed. worker_id: %d, job_id: %s, error: %v", workerID, jobID, err)
		}
	}
}
