package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
	"github.com/s3dt-tech/catalog-backend/internal/cfg"
	"github.com/s3dt-tech/catalog-backend/internal/domain"
	"github.com/s3dt-tech/catalog-backend/pkg/clients"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
	"github.com/s3dt-tech/catalog-backend/pkg/logger"
)

// JobRepo хранит снапшоты задач синхронизации в Redis.
// Снапшот пишет только исполняющий воркер (плюс постановка в очередь),
// запрос отмены лежит в отдельном ключе: это исключает гонку
// read-modify-write между воркером и отменой.
type JobRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewJobRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *JobRepo {
	return &JobRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// jobModel — JSON-представление задачи в Redis.
type jobModel struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	State string `json:"state"`

	TotalItems    int `json:"total_items"`
	SelectedItems int `json:"selected_items"`
	SkippedItems  int `json:"skipped_items"`

	Phase       string `json:"phase,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"`
	ErrorDetail string `json:"error_detail,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	ElapsedMs  int64      `json:"elapsed_ms"`
}

// Save сохраняет снапшот задачи. Снапшоты завершённых задач остаются
// доступными для инспекции в течение настроенного TTL (0 — бессрочно).
func (j *JobRepo) Save(ctx context.Context, job *domain.Job) error {
	data, err := json.Marshal(toModel(job))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := j.client.Client.Set(ctx, jobKey(job.ID), data, j.cfg.JobTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Get возвращает снапшот задачи по идентификатору.
func (j *JobRepo) Get(ctx context.Context, id string) (*domain.Job, error) {
	data, err := j.client.Client.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, r.Nil) {
		return nil, e.ErrJobNotFound
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model jobModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return toEntity(&model), nil
}

// RequestCancel выставляет флаг отмены задачи.
func (j *JobRepo) RequestCancel(ctx context.Context, id string) error {
	if err := j.client.Client.Set(ctx, cancelKey(id), "1", j.cfg.JobTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// CancelRequested сообщает, запрошена ли отмена задачи.
// Воркер опрашивает флаг между позициями.
func (j *JobRepo) CancelRequested(ctx context.Context, id string) (bool, error) {
	n, err := j.client.Client.Exists(ctx, cancelKey(id)).Result()
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return n > 0, nil
}

func jobKey(id string) string {
	return "job:" + id
}

func cancelKey(id string) string {
	return "job:" + id + ":cancel"
}

func toModel(job *domain.Job) *jobModel {
	return &jobModel{
		ID:            job.ID,
		Kind:          string(job.Kind),
		State:         string(job.State),
		TotalItems:    job.TotalItems,
		SelectedItems: job.SelectedItems,
		SkippedItems:  job.SkippedItems,
		Phase:         job.Phase,
		ErrorKind:     job.ErrorKind,
		ErrorDetail:   job.ErrorDetail,
		CreatedAt:     job.CreatedAt,
		StartedAt:     job.StartedAt,
		FinishedAt:    job.FinishedAt,
		ElapsedMs:     job.Elapsed.Milliseconds(),
	}
}

func toEntity(model *jobModel) *domain.Job {
	return &domain.Job{
		ID:            model.ID,
		Kind:          domain.JobKind(model.Kind),
		State:         domain.JobState(model.State),
		TotalItems:    model.TotalItems,
		SelectedItems: model.SelectedItems,
		SkippedItems:  model.SkippedItems,
		Phase:         model.Phase,
		ErrorKind:     model.ErrorKind,
		ErrorDetail:   model.ErrorDetail,
		CreatedAt:     model.CreatedAt,
		StartedAt:     model.StartedAt,
		FinishedAt:    model.FinishedAt,
		Elapsed:       time.Duration(model.ElapsedMs) * time.Millisecond,
	}
}
