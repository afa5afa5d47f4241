package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/s3dt-tech/catalog-backend/internal/domain"
	"github.com/s3dt-tech/catalog-backend/internal/transform"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
	"github.com/s3dt-tech/catalog-backend/pkg/logger"
)

// errCanceled сигнализирует конвейеру о кооперативной отмене задачи.
var errCanceled = errors.New("job canceled")

// JobUseCase управляет жизненным циклом задач синхронизации: постановка в
// очередь, исполнение конвейеров, отмена и выдача статуса.
type JobUseCase struct {
	jobRepo        JobRepository
	catalogRepo    CatalogRepository
	queue          JobQueue
	supplierFeed   SupplierFeedInfra
	storefrontFeed StorefrontFeedInfra
	transformer    *transform.Transformer
	reportPeriod   int
	logger         logger.Logger
}

func NewJobUC(
	jobRepo JobRepository,
	catalogRepo CatalogRepository,
	queue JobQueue,
	supplierFeed SupplierFeedInfra,
	storefrontFeed StorefrontFeedInfra,
	transformer *transform.Transformer,
	reportPeriod int,
	logger logger.Logger,
) *JobUseCase {
	if reportPeriod <= 0 {
		reportPeriod = 1000
	}

	return &JobUseCase{
		jobRepo:        jobRepo,
		catalogRepo:    catalogRepo,
		queue:          queue,
		supplierFeed:   supplierFeed,
		storefrontFeed: storefrontFeed,
		transformer:    transformer,
		reportPeriod:   reportPeriod,
		logger:         logger,
	}
}

// Enqueue создаёт задачу, сохраняет её снимок и публикует в очередь.
func (u *JobUseCase) Enqueue(ctx context.Context, kind domain.JobKind) (*domain.Job, error) {
	const op = "JobUseCase.Enqueue"

	job := domain.NewJob(uuid.NewString(), kind)

	if err := u.jobRepo.Save(ctx, job); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := u.queue.Publish(ctx, job.ID); err != nil {
		job.ErrorDetail = err.Error()
		if kind := e.KindOf(err); kind != nil {
			job.ErrorKind = kind.Error()
		}
		if trErr := job.Transition(domain.JobStateFailed); trErr == nil {
			now := time.Now()
			job.FinishedAt = &now
			if saveErr := u.jobRepo.Save(ctx, job); saveErr != nil {
				u.logger.Errorf(saveErr, "failed to persist job after publish failure. job_id: %s", job.ID)
			}
		}

		return nil, e.Wrap(op, err)
	}

	u.logger.Infof("job enqueued. job_id: %s, kind: %s", job.ID, job.Kind)

	return job, nil
}

// Status возвращает текущий снимок задачи.
func (u *JobUseCase) Status(ctx context.Context, id string) (*domain.Job, error) {
	const op = "JobUseCase.Status"

	job, err := u.jobRepo.Get(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return job, nil
}

// Cancel запрашивает отмену задачи. Задача в очереди отменяется сразу,
// выполняющаяся — на ближайшей контрольной точке конвейера.
func (u *JobUseCase) Cancel(ctx context.Context, id string) error {
	const op = "JobUseCase.Cancel"

	job, err := u.jobRepo.Get(ctx, id)
	if err != nil {
		return e.Wrap(op, err)
	}

	if job.Terminal() {
		return e.Wrap(op, e.ErrJobAlreadyFinal)
	}

	if err := u.jobRepo.RequestCancel(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	if job.State == domain.JobStateQueued {
		if err := job.Transition(domain.JobStateCanceled); err == nil {
			now := time.Now()
			job.FinishedAt = &now
			job.Phase = "canceled before start"

			if err := u.jobRepo.Save(ctx, job); err != nil {
				return e.Wrap(op, err)
			}
		}
	}

	u.logger.Infof("job cancel requested. job_id: %s", id)

	return nil
}

// Run исполняет задачу из очереди. Повторная доставка уже завершённой
// задачи игнорируется.
func (u *JobUseCase) Run(ctx context.Context, id string) error {
	const op = "JobUseCase.Run"

	job, err := u.jobRepo.Get(ctx, id)
	if err != nil {
		return e.Wrap(op, err)
	}

	if job.Terminal() {
		u.logger.Warnf("skipping redelivered job in terminal state. job_id: %s, state: %s", job.ID, job.State)
		return nil
	}

	canceled, err := u.jobRepo.CancelRequested(ctx, id)
	if err != nil {
		return e.Wrap(op, err)
	}
	if canceled {
		u.finish(ctx, job, domain.JobStateCanceled, "canceled before start")
		return nil
	}

	now := time.Now()
	job.StartedAt = &now
	if err := job.Transition(domain.JobStateRunning); err != nil {
		return e.Wrap(op, err)
	}
	if err := u.jobRepo.Save(ctx, job); err != nil {
		return e.Wrap(op, err)
	}

	started := time.Now()

	var runErr error
	switch job.Kind {
	case domain.JobKindSupplierSync:
		runErr = u.runSupplierSync(ctx, job)
	case domain.JobKindStorefrontSync:
		runErr = u.runStorefrontSync(ctx, job)
	default:
		runErr = e.ErrUnknownJobKind
	}

	job.Elapsed = time.Since(started)

	if errors.Is(runErr, errCanceled) {
		u.finish(ctx, job, domain.JobStateCanceled, "canceled")
		u.logger.Infof("job canceled. job_id: %s, total: %d, selected: %d", job.ID, job.TotalItems, job.SelectedItems)
		return nil
	}

	if runErr != nil {
		job.ErrorDetail = runErr.Error()
		if kind := e.KindOf(runErr); kind != nil {
			job.ErrorKind = kind.Error()
		}
		u.finish(ctx, job, domain.JobStateFailed, "failed")
		return e.Wrap(op, runErr)
	}

	u.finish(ctx, job, domain.JobStateFinished, "done")
	u.logger.Infof(
		"job finished. job_id: %s, kind: %s, total: %d, selected: %d, skipped: %d, elapsed: %s",
		job.ID, job.Kind, job.TotalItems, job.SelectedItems, job.SkippedItems, job.Elapsed,
	)

	return nil
}

// finish переводит задачу в конечное состояние и сохраняет её снимок.
func (u *JobUseCase) finish(ctx context.Context, job *domain.Job, state domain.JobState, phase string) {
	if err := job.Transition(state); err != nil {
		u.logger.Errorf(err, "invalid terminal transition. job_id: %s", job.ID)
		return
	}

	now := time.Now()
	job.FinishedAt = &now
	job.Phase = phase

	if err := u.jobRepo.Save(ctx, job); err != nil {
		u.logger.Errorf(err, "failed to persist terminal job state. job_id: %s", job.ID)
	}
}

// checkpoint вызывается между позициями: проверяет запрос на отмену
// после каждой позиции, снапшот прогресса сохраняет раз в reportPeriod.
func (u *JobUseCase) checkpoint(ctx context.Context, job *domain.Job) error {
	canceled, err := u.jobRepo.CancelRequested(ctx, job.ID)
	if err != nil {
		return err
	}
	if canceled {
		return errCanceled
	}

	if job.TotalItems%u.reportPeriod != 0 {
		return nil
	}

	if err := u.jobRepo.Save(ctx, job); err != nil {
		return err
	}

	u.logger.Debugf("job progress. job_id: %s, total: %d, selected: %d", job.ID, job.TotalItems, job.SelectedItems)

	return nil
}

// setPhase обновляет человекочитаемую фазу задачи и сохраняет снимок.
func (u *JobUseCase) setPhase(ctx context.Context, job *domain.Job, phase string) {
	job.Phase = phase
	if err := u.jobRepo.Save(ctx, job); err != nil {
		u.logger.Warnf("failed to persist job phase. job_id: %s, phase: %s, error: %v", job.ID, phase, err)
	}
}

// runSupplierSync качает XML-каталог поставщика и прогоняет каждую позицию
// через фильтр и конвертацию, сохраняя результат в каталог.
func (u *JobUseCase) runSupplierSync(ctx context.Context, job *domain.Job) error {
	u.setPhase(ctx, job, "resolving catalog url")

	catalogURL, err := u.supplierFeed.ResolveCatalogURL(ctx)
	if err != nil {
		return err
	}

	u.setPhase(ctx, job, "downloading catalog")

	stream, err := u.supplierFeed.Open(ctx, catalogURL)
	if err != nil {
		return err
	}
	defer stream.Close()

	u.setPhase(ctx, job, "processing items")

	for {
		item, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		job.TotalItems++

		if !u.transformer.InScope(item) {
			if err := u.checkpoint(ctx, job); err != nil {
				return err
			}
			continue
		}

		canonical, err := u.transformer.Transform(item)
		if err != nil {
			if errors.Is(err, e.ErrItemInvalid) {
				job.SkippedItems++
				u.logger.Warnf("skipping invalid item. job_id: %s, code: %s, error: %v", job.ID, item.Code, err)

				if err := u.checkpoint(ctx, job); err != nil {
					return err
				}
				continue
			}

			return err
		}

		if err := u.catalogRepo.UpsertSupplier(ctx, item, canonical); err != nil {
			return err
		}

		job.SelectedItems++

		if err := u.checkpoint(ctx, job); err != nil {
			return err
		}
	}

	return nil
}

// runStorefrontSync читает CSV-экспорт витрины и сохраняет кураторские
// поля поверх записей каталога.
func (u *JobUseCase) runStorefrontSync(ctx context.Context, job *domain.Job) error {
	u.setPhase(ctx, job, "downloading storefront export")

	stream, err := u.storefrontFeed.Open(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()

	u.setPhase(ctx, job, "processing rows")

	for {
		row, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		job.TotalItems++

		if row.Code == "" {
			job.SkippedItems++

			if err := u.checkpoint(ctx, job); err != nil {
				return err
			}
			continue
		}

		override := row.Override
		if err := u.catalogRepo.UpsertStorefront(ctx, row.Code, &override); err != nil {
			return err
		}

		job.SelectedItems++

		if err := u.checkpoint(ctx, job); err != nil {
			return err
		}
	}

	return nil
}
