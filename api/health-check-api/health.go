// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package healthcheck_api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rapidaai/fitcoach/config"
	"github.com/rapidaai/fitcoach/pkg/commons"
)

type HealthCheckApi struct {
	cfg    *config.AppConfig
	logger commons.Logger
}

func New(cfg *config.AppConfig, logger commons.Logger) *HealthCheckApi {
	return &HealthCheckApi{cfg: cfg, logger: logger}
}

// Health reports whether the proxy is usable. It only ever exposes a
// presence flag for the key, never the value.
//
// @Router /api/health [get]
func (api *HealthCheckApi) Health(c *gin.Context) {
	status := "ok"
	message := "proxy is configured"
	if !api.cfg.HasApiKey() {
		status = "degraded"
		message = "inference api key is not configured; webrtc proxying is disabled"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":           status,
		"apiKeyConfigured": api.cfg.HasApiKey(),
		"message":          message,
	})
}

// Healthz is the liveness probe.
func (api *HealthCheckApi) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
