package http

import (
	"net/http"

	"github.com/s3dt-tech/catalog-backend/internal/usecase"
	"github.com/s3dt-tech/catalog-backend/pkg/logger"
)

type ExportHandler struct {
	exportUsecase usecase.ExportUC
	logger        logger.Logger
}

func NewExportHandler(exportUsecase usecase.ExportUC, logger logger.Logger) *ExportHandler {
	return &ExportHandler{exportUsecase: exportUsecase, logger: logger}
}

// catalogExport стримит объединённую XML-выгрузку каталога прямо в ответ.
// Ошибка после начала записи уже не может сменить статус ответа,
// поэтому соединение просто обрывается.
func (h *ExportHandler) catalogExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")

	if err := h.exportUsecase.WriteCatalog(r.Context(), w); err != nil {
		h.logger.Errorf(err, "catalog export aborted")
		panic(http.ErrAbortHandler)
	}
}

// publishExport собирает выгрузку и публикует её в хранилище артефактов.
func (h *ExportHandler) publishExport(w http.ResponseWriter, r *http.Request) {
	res, err := h.exportUsecase.Publish(r.Context())
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"object_key": res.ObjectKey,
	})
}
