// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package inference_api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rapidaai/fitcoach/config"
	inference_client "github.com/rapidaai/fitcoach/pkg/clients/inference"
	"github.com/rapidaai/fitcoach/pkg/commons"
	"github.com/rapidaai/fitcoach/pkg/faults"
)

// InferenceApi proxies WebRTC negotiation to the inference provider. The
// secret key stays on this side: requests in have no credentials, responses
// out never carry them.
type InferenceApi struct {
	cfg    *config.AppConfig
	logger commons.Logger
	client inference_client.Client
}

func New(cfg *config.AppConfig, logger commons.Logger, client inference_client.Client) *InferenceApi {
	return &InferenceApi{cfg: cfg, logger: logger, client: client}
}

// InitWebRTC accepts a client offer plus stream parameters, injects the
// configured key and forwards to the remote service, relaying the answer
// verbatim.
//
// @Router /api/init-webrtc [post]
func (api *InferenceApi) InitWebRTC(c *gin.Context) {
	if !api.cfg.HasApiKey() {
		fault := faults.Configuration("inference api key is not configured")
		api.logger.Errorf("%v", fault)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": fault})
		return
	}

	var request inference_client.InitRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": faults.Negotiation("invalid request body", nil)})
		return
	}
	if err := request.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	answer, err := api.client.InitWebRTC(c.Request.Context(), request.Offer, request.WrtcParams)
	if err != nil {
		api.logger.Errorf("init-webrtc failed: %v", err)
		c.JSON(statusFor(err), gin.H{"error": err})
		return
	}

	c.JSON(http.StatusOK, answer)
}

// TurnConfig relays short-lived TURN relay credentials in a browser-safe
// shape. Every failure degrades to a null body with 200: the caller falls
// back to STUN-only connectivity instead of failing the session.
//
// @Router /api/webrtc_turn_config [get]
func (api *InferenceApi) TurnConfig(c *gin.Context) {
	server, err := api.client.TurnConfig(c.Request.Context())
	if err != nil {
		api.logger.Warnf("turn credentials unavailable: %v", err)
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, server)
}

func statusFor(err error) int {
	switch faults.KindOf(err) {
	case faults.KindConfiguration:
		return http.StatusServiceUnavailable
	case faults.KindNegotiation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
