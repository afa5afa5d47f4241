package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/s3dt-tech/catalog-backend/internal/usecase"
	"github.com/s3dt-tech/catalog-backend/pkg/logger"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(jobUC usecase.JobUC, exportUC usecase.ExportUC) {
	r.router.Route("/api/v1", func(v1 chi.Router) {
		jobHandler := NewJobHandler(jobUC, r.logger)
		registerJobRoutes(v1, jobHandler)

		exportHandler := NewExportHandler(exportUC, r.logger)
		registerExportRoutes(v1, exportHandler)
	})
}

func registerJobRoutes(router chi.Router, jobHandler *JobHandler) {
	router.Route("/jobs", func(jr chi.Router) {
		jr.Post("/", jobHandler.enqueueJob)
		jr.Get("/{id}", jobHandler.jobStatus)
		jr.Post("/{id}/cancel", jobHandler.cancelJob)
	})
}

func registerExportRoutes(router chi.Router, exportHandler *ExportHandler) {
	router.Route("/export", func(er chi.Router) {
		er.Get("/catalog", exportHandler.catalogExport)
		er.Post("/publish", exportHandler.publishExport)
	})
}
