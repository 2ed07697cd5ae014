package handler

import "github.com/gin-gonic/gin"

// Handlers bundles every HTTP handler mounted under the API prefix.
type Handlers struct {
	Seasons  *SeasonHandler
	Stations *StationHandler
	Metrics  *MetricsHandler
}

// RegisterRoutes mounts the API on api and the probes and metrics on root.
func RegisterRoutes(root gin.IRoutes, api gin.IRouter, h Handlers) {
	if h.Metrics != nil {
		root.GET("/health", h.Metrics.Health)
		root.GET("/ready", h.Metrics.Ready)
		root.GET("/metrics", h.Metrics.Prometheus)
		root.GET("/metrics/summary", h.Metrics.Summary)
	}

	seasons := api.Group("/seasons")
	seasons.GET("", h.Seasons.List)
	seasons.POST("", h.Seasons.Create)
	seasons.GET("/active", h.Seasons.GetActive)
	seasons.GET("/:year", h.Seasons.Get)
	seasons.POST("/:year/activate", h.Seasons.Activate)
	seasons.POST("/:year/close", h.Seasons.Close)
	seasons.POST("/:year/reprocess", h.Seasons.Reprocess)
	seasons.GET("/:year/statistics", h.Seasons.Statistics)
	seasons.GET("/:year/master-list", h.Seasons.MasterList)

	stations := api.Group("/stations")
	stations.GET("", h.Stations.List)
	stations.PUT("/:id", h.Stations.Upsert)
	stations.GET("/:id/status", h.Stations.Status)
	stations.PUT("/:id/override", h.Stations.Override)
	stations.POST("/:id/offloads", h.Stations.RecordOffload)
}
