// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package inference_client

import (
	"encoding/json"
	"strings"

	"github.com/rapidaai/fitcoach/pkg/faults"
	"github.com/rapidaai/fitcoach/pkg/ice"
)

// Offer is the client-generated SDP offer.
type Offer struct {
	SDP  string `json:"sdp"`
	Type string `json:"type"`
}

func (o Offer) Validate() error {
	if strings.TrimSpace(o.SDP) == "" {
		return faults.Negotiation("offer sdp must not be empty", nil)
	}
	if o.Type != "offer" {
		return faults.Negotiation("offer type must be \"offer\"", nil)
	}
	return nil
}

// WebRTCParams names the workflow inputs/outputs the remote pipeline binds
// the stream to. WorkflowSpec is opaque to us.
type WebRTCParams struct {
	WorkflowSpec      json.RawMessage `json:"workflowSpec,omitempty"`
	ImageInputName    string          `json:"imageInputName"`
	StreamOutputNames []string        `json:"streamOutputNames,omitempty"`
	DataOutputNames   []string        `json:"dataOutputNames,omitempty"`
	IceServers        []ice.Server    `json:"iceServers,omitempty"`
	ProcessingTimeout float64         `json:"processingTimeout,omitempty"`
	Fps               float64         `json:"fps,omitempty"`
}

func (p WebRTCParams) Validate() error {
	if strings.TrimSpace(p.ImageInputName) == "" {
		return faults.Negotiation("wrtcParams must name an image input", nil)
	}
	if len(p.StreamOutputNames) == 0 && len(p.DataOutputNames) == 0 {
		return faults.Negotiation("wrtcParams must name at least one output", nil)
	}
	return nil
}

// InitRequest is the browser-facing proxy request body: no credentials.
type InitRequest struct {
	Offer      Offer        `json:"offer"`
	WrtcParams WebRTCParams `json:"wrtcParams"`
}

func (r InitRequest) Validate() error {
	if err := r.Offer.Validate(); err != nil {
		return err
	}
	return r.WrtcParams.Validate()
}

// initRequest is the provider-facing body: the proxy request plus the
// injected secret.
type initRequest struct {
	ApiKey     string       `json:"api_key"`
	Offer      Offer        `json:"offer"`
	WrtcParams WebRTCParams `json:"wrtcParams"`
}

// AnswerContext identifies the remote pipeline handling this session.
type AnswerContext struct {
	PipelineID string `json:"pipeline_id"`
	RequestID  string `json:"request_id"`
}

// Answer is the remote SDP answer, relayed verbatim through the proxy.
type Answer struct {
	SDP     string        `json:"sdp"`
	Type    string        `json:"type"`
	Context AnswerContext `json:"context"`
}

func (a Answer) validate() error {
	if strings.TrimSpace(a.SDP) == "" || a.Type != "answer" {
		return faults.Negotiation("inference service returned a malformed answer", nil)
	}
	return nil
}
