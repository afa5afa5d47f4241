package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/s3dt-tech/catalog-backend/internal/domain"
	"github.com/s3dt-tech/catalog-backend/internal/usecase"
	"github.com/s3dt-tech/catalog-backend/pkg/e"
	"github.com/s3dt-tech/catalog-backend/pkg/logger"
)

type JobHandler struct {
	jobUsecase usecase.JobUC
	logger     logger.Logger
}

func NewJobHandler(jobUsecase usecase.JobUC, logger logger.Logger) *JobHandler {
	return &JobHandler{jobUsecase: jobUsecase, logger: logger}
}

type enqueueJobRequest struct {
	Kind string `json:"kind"`
}

type jobResponse struct {
	ID            string     `json:"id"`
	Kind          string     `json:"kind"`
	State         string     `json:"state"`
	Phase         string     `json:"phase,omitempty"`
	TotalItems    int        `json:"total_items"`
	SelectedItems int        `json:"selected_items"`
	SkippedItems  int        `json:"skipped_items"`
	ErrorKind     string     `json:"error_kind,omitempty"`
	Error         string     `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	ElapsedSec    float64    `json:"elapsed_sec"`
}

func toJobResponse(job *domain.Job) *jobResponse {
	return &jobResponse{
		ID:            job.ID,
		Kind:          string(job.Kind),
		State:         string(job.State),
		Phase:         job.Phase,
		TotalItems:    job.TotalItems,
		SelectedItems: job.SelectedItems,
		SkippedItems:  job.SkippedItems,
		ErrorKind:     job.ErrorKind,
		Error:         job.ErrorDetail,
		CreatedAt:     job.CreatedAt,
		StartedAt:     job.StartedAt,
		FinishedAt:    job.FinishedAt,
		ElapsedSec:    job.Elapsed.Seconds(),
	}
}

// enqueueJob ставит задачу синхронизации в очередь и сразу возвращает её снимок.
func (h *JobHandler) enqueueJob(w http.ResponseWriter, r *http.Request) {
	var req enqueueJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	kind, err := domain.ParseJobKind(req.Kind)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrUnknownJobKind.Error(), req.Kind)
		WriteError(w, e.ErrUnknownJobKind)
		return
	}

	job, err := h.jobUsecase.Enqueue(r.Context(), kind)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusAccepted, toJobResponse(job))
}

// jobStatus возвращает текущий снимок задачи по id.
func (h *JobHandler) jobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.jobUsecase.Status(r.Context(), id)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toJobResponse(job))
}

// cancelJob запрашивает отмену задачи.
func (h *JobHandler) cancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.jobUsecase.Cancel(r.Context(), id); err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusAccepted, map[string]interface{}{
		"canceled": true,
	})
}
