// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package inference_client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rapidaai/fitcoach/config"
	"github.com/rapidaai/fitcoach/pkg/commons"
	"github.com/rapidaai/fitcoach/pkg/faults"
	"github.com/rapidaai/fitcoach/pkg/ice"
)

const (
	initPipelinePath = "/initialise_webrtc_inference_pipeline"
	turnConfigPath   = "/webrtc_turn_config"

	requestTimeout = 30 * time.Second
)

// Client negotiates WebRTC inference sessions. Two implementations exist:
// the provider client (server side, injects the secret key) and the proxy
// client (talks to our own /api endpoints, never sees the key).
type Client interface {
	InitWebRTC(ctx context.Context, offer Offer, params WebRTCParams) (*Answer, error)
	TurnConfig(ctx context.Context) (*ice.Server, error)
}

type providerClient struct {
	cfg    *config.AppConfig
	logger commons.Logger
	httpc  *resty.Client
}

// NewProviderClient builds the key-holding client used by the backend
// proxy. The key travels only in outbound requests to the provider; it is
// never logged and never copied into a response.
func NewProviderClient(cfg *config.AppConfig, logger commons.Logger) Client {
	httpc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.InferenceHost, "/")).
		SetTimeout(requestTimeout).
		SetRetryCount(2).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// only the TURN fetch is safe to replay
			return r != nil && r.Request.Method == http.MethodGet &&
				(err != nil || r.StatusCode() >= http.StatusInternalServerError)
		})
	return &providerClient{cfg: cfg, logger: logger, httpc: httpc}
}

func (pc *providerClient) InitWebRTC(ctx context.Context, offer Offer, params WebRTCParams) (*Answer, error) {
	if !pc.cfg.HasApiKey() {
		return nil, faults.Configuration("inference api key is not configured")
	}

	var answer Answer
	resp, err := pc.httpc.R().
		SetContext(ctx).
		SetBody(initRequest{
			ApiKey:     pc.cfg.ApiKey,
			Offer:      offer,
			WrtcParams: params,
		}).
		SetResult(&answer).
		Post(initPipelinePath)
	if err != nil {
		return nil, faults.Negotiation("inference service unreachable", err)
	}
	if resp.IsError() {
		// the remote body may echo request fields, key included; reduce it
		// to a status classification
		pc.logger.Errorf("init-webrtc rejected by inference service: status=%d", resp.StatusCode())
		return nil, faults.Negotiation("inference service rejected the offer", nil)
	}
	if err := answer.validate(); err != nil {
		return nil, err
	}
	return &answer, nil
}

func (pc *providerClient) TurnConfig(ctx context.Context) (*ice.Server, error) {
	if !pc.cfg.HasApiKey() {
		return nil, faults.TurnUnavailable("inference api key is not configured", nil)
	}

	resp, err := pc.httpc.R().
		SetContext(ctx).
		SetQueryParam("api_key", pc.cfg.ApiKey).
		Get(turnConfigPath)
	if err != nil {
		return nil, faults.TurnUnavailable("turn credential fetch failed", err)
	}
	if resp.IsError() {
		return nil, faults.TurnUnavailable("turn credential fetch failed", nil)
	}

	result := ice.NormalizeTurn(resp.Body())
	if !result.Valid() {
		pc.logger.Warnf("discarding turn credentials: %s", result.Reason())
		return nil, faults.TurnUnavailable(result.Reason(), nil)
	}
	server := result.Server()
	return &server, nil
}

type proxyClient struct {
	logger commons.Logger
	httpc  *resty.Client
}

// NewProxyClient builds the client-side counterpart: it speaks to the
// backend proxy's /api endpoints and carries no credentials at all.
func NewProxyClient(baseURL string, logger commons.Logger) Client {
	httpc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(requestTimeout)
	return &proxyClient{logger: logger, httpc: httpc}
}

// errorEnvelope is the proxy's error response shape.
type errorEnvelope struct {
	Error *faults.Fault `json:"error"`
}

func (pc *proxyClient) InitWebRTC(ctx context.Context, offer Offer, params WebRTCParams) (*Answer, error) {
	var answer Answer
	var envelope errorEnvelope
	resp, err := pc.httpc.R().
		SetContext(ctx).
		SetBody(InitRequest{Offer: offer, WrtcParams: params}).
		SetResult(&answer).
		SetError(&envelope).
		Post("/api/init-webrtc")
	if err != nil {
		return nil, faults.Negotiation("proxy unreachable", err)
	}
	if resp.IsError() {
		if envelope.Error != nil && envelope.Error.Kind != "" {
			return nil, envelope.Error
		}
		return nil, faults.Negotiation("proxy rejected the offer", nil)
	}
	if err := answer.validate(); err != nil {
		return nil, err
	}
	return &answer, nil
}

func (pc *proxyClient) TurnConfig(ctx context.Context) (*ice.Server, error) {
	resp, err := pc.httpc.R().
		SetContext(ctx).
		Get("/api/webrtc_turn_config")
	if err != nil {
		return nil, faults.TurnUnavailable("turn credential fetch failed", err)
	}
	if resp.IsError() {
		return nil, faults.TurnUnavailable("turn credential fetch failed", nil)
	}
	body := strings.TrimSpace(string(resp.Body()))
	if body == "" || body == "null" {
		return nil, faults.TurnUnavailable("no turn credentials available", nil)
	}

	result := ice.NormalizeTurn(resp.Body())
	if !result.Valid() {
		return nil, faults.TurnUnavailable(result.Reason(), nil)
	}
	server := result.Server()
	return &server, nil
}
