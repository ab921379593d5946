// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package fitcoach_routers

import (
	"github.com/gin-gonic/gin"
	healthCheckApi "github.com/rapidaai/fitcoach/api/health-check-api"
	"github.com/rapidaai/fitcoach/config"
	"github.com/rapidaai/fitcoach/pkg/commons"
)

func HealthCheckRoutes(cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger) {
	logger.Info("HealthCheckRoutes added to engine.")
	hcApi := healthCheckApi.New(cfg, logger)
	{
		engine.GET("/api/health", hcApi.Health)
		engine.GET("/healthz/", hcApi.Healthz)
	}
}

// StaticRoutes serves the workflow specification document at its fixed
// path; browser clients fetch it once and cache it for the page lifetime.
func StaticRoutes(cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger) {
	logger.Info("StaticRoutes added to engine.")
	engine.StaticFile("/static/workflow-spec.json", cfg.WorkflowSpecPath)
}
