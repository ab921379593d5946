// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package session

import (
	"context"

	"github.com/pion/webrtc/v4"
	inference_client "github.com/rapidaai/fitcoach/pkg/clients/inference"
	"github.com/rapidaai/fitcoach/pkg/commons"
	"github.com/rapidaai/fitcoach/pkg/faults"
)

const dataChannelLabel = "inference"

// pionNegotiator drives the offer/answer exchange with pion and the
// signaling client. ICE, SDP and the media pipeline itself stay inside pion
// and the remote service.
type pionNegotiator struct {
	client inference_client.Client
	logger commons.Logger
}

func newPionNegotiator(client inference_client.Client, logger commons.Logger) Negotiator {
	return &pionNegotiator{client: client, logger: logger}
}

func (n *pionNegotiator) Negotiate(
	ctx context.Context,
	cfg webrtc.Configuration,
	media MediaStream,
	params inference_client.WebRTCParams,
	hooks Hooks,
) (Handle, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, faults.Negotiation("peer connection setup failed", err)
	}

	fail := func(message string, cause error) (Handle, error) {
		if closeErr := pc.Close(); closeErr != nil {
			n.logger.Warnf("discarding failed peer connection: %v", closeErr)
		}
		return nil, faults.Negotiation(message, cause)
	}

	for _, track := range media.Tracks() {
		if _, err := pc.AddTrack(track); err != nil {
			return fail("adding local track failed", err)
		}
	}

	dc, err := pc.CreateDataChannel(dataChannelLabel, nil)
	if err != nil {
		return fail("data channel setup failed", err)
	}
	if hooks.OnData != nil {
		dc.OnMessage(func(msg webrtc.DataChannelMessage) {
			hooks.OnData(msg.Data)
		})
	}
	if hooks.OnRemoteTrack != nil {
		pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
			hooks.OnRemoteTrack(track)
		})
	}

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return fail("offer creation failed", err)
	}

	// block until ICE gathering completes so the offer carries every
	// candidate; the remote service does no trickle
	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(offer); err != nil {
		return fail("local description rejected", err)
	}
	select {
	case <-gatherComplete:
	case <-ctx.Done():
		return fail("cancelled during ice gathering", ctx.Err())
	}

	local := pc.LocalDescription()
	answer, err := n.client.InitWebRTC(ctx, inference_client.Offer{
		SDP:  local.SDP,
		Type: "offer",
	}, params)
	if err != nil {
		if closeErr := pc.Close(); closeErr != nil {
			n.logger.Warnf("discarding failed peer connection: %v", closeErr)
		}
		return nil, err
	}

	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer.SDP,
	}); err != nil {
		return fail("remote answer rejected", err)
	}

	return &pionHandle{pc: pc, answer: answer.Context}, nil
}

type pionHandle struct {
	pc     *webrtc.PeerConnection
	answer inference_client.AnswerContext
}

func (h *pionHandle) Context() inference_client.AnswerContext { return h.answer }

func (h *pionHandle) Close() error { return h.pc.Close() }
