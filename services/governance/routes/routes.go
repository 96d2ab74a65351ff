// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bimsrama/relasi4warna-governance/services/governance/audit"
	"github.com/bimsrama/relasi4warna-governance/services/governance/handlers"
	"github.com/bimsrama/relasi4warna-governance/services/governance/middleware"
	"github.com/bimsrama/relasi4warna-governance/services/governance/pipeline"
	"github.com/bimsrama/relasi4warna-governance/services/governance/queue"
)

// SetupRoutes registers the governance API on the router.
//
// Endpoints:
//
//	GET    /health
//	GET    /metrics
//	POST   /v1/evaluate
//	POST   /v1/evaluate/batch
//	POST   /v1/generate
//	GET    /v1/queue
//	GET    /v1/queue/:queueId
//	POST   /v1/queue/:queueId/claim
//	POST   /v1/queue/:queueId/resolve
//	GET    /v1/audit/export
func SetupRoutes(router *gin.Engine, p *pipeline.Pipeline, store queue.Store,
	log audit.Log, limiter *middleware.RateLimiter) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	if limiter != nil {
		v1.Use(limiter.Middleware())
	}
	{
		v1.POST("/evaluate", handlers.HandleEvaluate(p))
		v1.POST("/evaluate/batch", handlers.HandleEvaluateBatch(p))
		v1.POST("/generate", handlers.HandleGenerate(p))

		queueGroup := v1.Group("/queue")
		{
			queueGroup.GET("", handlers.HandleListQueue(store))
			queueGroup.GET("/:queueId", handlers.HandleGetQueueItem(store))
			queueGroup.POST("/:queueId/claim", handlers.HandleClaimQueueItem(store))
			queueGroup.POST("/:queueId/resolve", handlers.HandleResolveQueueItem(store))
		}

		v1.GET("/audit/export", handlers.HandleExportAudit(log))
	}
}
