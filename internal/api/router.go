package api

import (
	"bike-data-pipeline/internal/api/handler"
	"bike-data-pipeline/pkg/router"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "bike-data-pipeline/docs"
)

// RegisterRoutes wires every pipeline endpoint into the router.
// Wildcard routes are matched in registration order, so the specific
// ones come before the generic /pipelines/* pair.
func RegisterRoutes(r *router.Router) {
	r.POST("/api/v1/pipelines", handler.CreatePipeline)
	r.GET("/api/v1/pipelines", handler.ListPipelines)
	// More specific routes first
	r.GET("/api/v1/pipelines/*/errors", handler.GetPipelineErrors)
	r.GET("/api/v1/pipelines/*/progress", handler.GetPipelineProgress)
	r.GET("/api/v1/pipelines/*/logs", handler.GetPipelineLogs)
	r.GET("/api/v1/pipelines/*/summary", handler.GetPipelineSummary)
	r.GET("/api/v1/pipelines/*/report", handler.GetPipelineReport)
	r.GET("/api/v1/pipelines/*/files", handler.GetJobFiles)
	r.POST("/api/v1/pipelines/*/retry", handler.RetryPipeline)
	r.PATCH("/api/v1/pipelines/*/cancel", handler.CancelPipeline)
	// File access
	r.GET("/api/v1/download/*/*", handler.DownloadFile)
	r.GET("/api/v1/files/*", handler.GetFileInfo)
	// Generic pipeline routes last
	r.GET("/api/v1/pipelines/*", handler.GetPipeline)
	r.DELETE("/api/v1/pipelines/*", handler.DeletePipeline)

	r.Mount("/swagger/", httpSwagger.WrapHandler)
}

// NewRouter builds the API router with all routes registered.
func NewRouter() *router.Router {
	r := router.NewRouter()
	RegisterRoutes(r)
	return r
}
