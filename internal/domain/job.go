package domain

import (
	"fmt"
	"time"
)

// JobKind — вид фоновой задачи синхронизации.
type JobKind string

const (
	JobKindSupplierSync   JobKind = "supplier_sync"
	JobKindStorefrontSync JobKind = "storefront_sync"
)

// ParseJobKind валидирует строковое представление вида задачи.
func ParseJobKind(s string) (JobKind, error) {
	switch JobKind(s) {
	case JobKindSupplierSync, JobKindStorefrontSync:
		return JobKind(s), nil
	default:
		return "", fmt.Errorf("unknown job kind: %q", s)
	}
}

// JobState — состояние задачи.
type JobState string

const (
	JobStateQueued   JobState = "queued"
	JobStateRunning  JobState = "running"
	JobStateFinished JobState = "finished"
	JobStateFailed   JobState = "failed"
	JobStateCanceled JobState = "canceled"
)

// allowedTransitions перечисляет допустимые переходы состояний.
var allowedTransitions = map[JobState][]JobState{
	JobStateQueued:  {JobStateRunning, JobStateFailed, JobStateCanceled},
	JobStateRunning: {JobStateFinished, JobStateFailed, JobStateCanceled},
}

// Job — фоновая задача синхронизации каталога.
// Создаётся при постановке в очередь, мутируется только исполняющим
// воркером (плюс внешний запрос на отмену), после завершения сохраняется
// для инспекции и не переиспользуется.
type Job struct {
	ID    string
	Kind  JobKind
	State JobState

	// Счётчики прогресса, монотонно растут в рамках одного запуска.
	TotalItems    int
	SelectedItems int
	SkippedItems  int

	Phase       string // человекочитаемая фаза выполнения
	ErrorKind   string // класс ошибки, остановившей задачу
	ErrorDetail string // заполняется при переходе в failed

	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
	Elapsed    time.Duration
}

func NewJob(id string, kind JobKind) *Job {
	return &Job{
		ID:        id,
		Kind:      kind,
		State:     JobStateQueued,
		CreatedAt: time.Now().UTC(),
	}
}

// Transition переводит задачу в новое состояние, отклоняя недопустимые
// переходы (например, finished -> running).
func (j *Job) Transition(to JobState) error {
	for _, allowed := range allowedTransitions[j.State] {
		if allowed == to {
			j.State = to
			return nil
		}
	}

	return fmt.Errorf("invalid job transition: %s -> %s", j.State, to)
}

// Terminal сообщает, является ли состояние задачи конечным.
func (j *Job) Terminal() bool {
	switch j.State {
	case JobStateFinished, JobStateFailed, JobStateCanceled:
		return true
	default:
		return false
	}
}
