// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package fitcoach_routers

import (
	"github.com/gin-gonic/gin"
	inferenceApi "github.com/rapidaai/fitcoach/api/inference-api"
	"github.com/rapidaai/fitcoach/config"
	inference_client "github.com/rapidaai/fitcoach/pkg/clients/inference"
	"github.com/rapidaai/fitcoach/pkg/commons"
)

func InferenceApiRoutes(cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger, client inference_client.Client) {
	logger.Info("InferenceApiRoutes added to engine.")
	apiv1 := engine.Group("/api")
	infApi := inferenceApi.New(cfg, logger, client)
	{
		apiv1.POST("/init-webrtc", infApi.InitWebRTC)
		apiv1.GET("/webrtc_turn_config", infApi.TurnConfig)
	}
}
