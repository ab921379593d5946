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
)

// State is the lifecycle manager's position.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateStopping   State = "stopping"
)

// MediaSource acquires the local camera (or a synthetic stand-in).
type MediaSource interface {
	Acquire(ctx context.Context) (MediaStream, error)
}

// MediaStream is an acquired capture resource. Release must be safe to call
// exactly once per Acquire; the manager guarantees it is.
type MediaStream interface {
	Tracks() []webrtc.TrackLocal
	Release() error
}

// Sink receives the processed remote stream.
type Sink interface {
	// Bind attaches an incoming remote track.
	Bind(track *webrtc.TrackRemote)
	// Play starts playback. A failure is non-fatal: some sinks cannot
	// autoplay, the session stays connected.
	Play() error
	// Clear drops any residual bound stream. Called on every entry to idle.
	Clear()
}

// Hooks are the negotiation callbacks wired before the offer is created so
// no early track or message is missed.
type Hooks struct {
	OnRemoteTrack func(track *webrtc.TrackRemote)
	OnData        func(payload []byte)
}

// Handle is an established peer session.
type Handle interface {
	Context() inference_client.AnswerContext
	Close() error
}

// Negotiator runs one offer/answer exchange over acquired media and returns
// the live session handle.
type Negotiator interface {
	Negotiate(ctx context.Context, cfg webrtc.Configuration, media MediaStream, params inference_client.WebRTCParams, hooks Hooks) (Handle, error)
}

// Session is the single active connection. At most one exists per manager.
type Session struct {
	ID       string
	Pipeline inference_client.AnswerContext

	handle Handle
	media  MediaStream
}
