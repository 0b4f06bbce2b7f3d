package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	"webhook-etl/internal/api/handler"
	"webhook-etl/internal/pipeline"
	"webhook-etl/internal/store"
	"webhook-etl/pkg/router"

	_ "webhook-etl/docs"
)

// NewRouter wires the admin API. jwtSecret enables bearer auth when set.
func NewRouter(manager *pipeline.Manager, st store.Store, jwtSecret string) *router.Router {
	r := router.New()
	if jwtSecret != "" {
		r.Use(AuthMiddleware(jwtSecret))
	}
	RegisterRoutes(r, handler.NewJobHandler(manager), handler.NewWebhookHandler(st))
	return r
}

// RegisterRoutes mounts the job, webhook, health and swagger routes on r
func RegisterRoutes(r *router.Router, jobs *handler.JobHandler, webhooks *handler.WebhookHandler) {
	r.GET("/api/v1/health", handler.Health)

	r.POST("/api/v1/jobs", jobs.CreateJob)
	r.GET("/api/v1/jobs", jobs.ListJobs)
	// More specific routes first
	r.GET("/api/v1/jobs/*/progress", jobs.GetJobProgress)
	r.POST("/api/v1/jobs/*/start", jobs.StartJob)
	r.POST("/api/v1/jobs/*/cancel", jobs.CancelJob)
	r.GET("/api/v1/jobs/*", jobs.GetJob)

	r.POST("/api/v1/webhooks", webhooks.CreateWebhook)
	r.GET("/api/v1/webhooks", webhooks.ListWebhooks)
	r.GET("/api/v1/webhooks/*/requests", webhooks.ListRequests)

	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))
}
