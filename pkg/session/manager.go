// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	inference_client "github.com/rapidaai/fitcoach/pkg/clients/inference"
	"github.com/rapidaai/fitcoach/pkg/commons"
	"github.com/rapidaai/fitcoach/pkg/faults"
	"github.com/rapidaai/fitcoach/pkg/ice"
	"github.com/rapidaai/fitcoach/pkg/reps"
	"github.com/rapidaai/fitcoach/pkg/workflow"
)

// Params name the workflow bindings for a session.
type Params struct {
	ImageInputName    string
	StreamOutputNames []string
	DataOutputNames   []string
}

// Manager owns the connection lifecycle: at most one active session,
// started from idle only, torn down unconditionally. All dependencies are
// constructor-injected so independent instances can run side by side.
type Manager struct {
	logger     commons.Logger
	client     inference_client.Client
	source     MediaSource
	sink       Sink
	specLoader *workflow.Loader
	negotiator Negotiator
	tracker    *reps.Tracker
	params     Params

	mu      sync.Mutex
	state   State
	session *Session
}

func NewManager(
	logger commons.Logger,
	client inference_client.Client,
	source MediaSource,
	sink Sink,
	specLoader *workflow.Loader,
	params Params,
) *Manager {
	return &Manager{
		logger:     logger,
		client:     client,
		source:     source,
		sink:       sink,
		specLoader: specLoader,
		negotiator: newPionNegotiator(client, logger),
		tracker:    reps.NewTracker(),
		params:     params,
		state:      StateIdle,
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns the active session, if any.
func (m *Manager) Current() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.session != nil
}

// Tracker exposes the rep tracker fed from the data channel.
func (m *Manager) Tracker() *reps.Tracker { return m.tracker }

// Start brings the manager from idle to connected. Calling it while already
// connecting or connected is a no-op, so a doubled start request cannot
// produce a second session. Any failure fully unwinds: acquired media is
// released, no partial session survives, and the manager is idle again.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		m.logger.Debugf("start ignored: state=%s", m.state)
		return nil
	}
	m.state = StateConnecting
	m.mu.Unlock()

	spec, err := m.specLoader.Load(ctx)
	if err != nil {
		return m.abortConnecting(faults.Negotiation("workflow spec load failed", err))
	}

	// TURN is best-effort: without it we run STUN-only
	var turn *ice.Server
	if server, err := m.client.TurnConfig(ctx); err != nil {
		m.logger.Warnf("continuing without turn relay: %v", err)
	} else {
		turn = server
	}
	servers := ice.BuildServerList(turn)

	media, err := m.source.Acquire(ctx)
	if err != nil {
		return m.abortConnecting(faults.Media("camera acquisition failed", err))
	}

	params := inference_client.WebRTCParams{
		WorkflowSpec:      spec,
		ImageInputName:    m.params.ImageInputName,
		StreamOutputNames: m.params.StreamOutputNames,
		DataOutputNames:   m.params.DataOutputNames,
		IceServers:        servers,
	}

	handle, err := m.negotiator.Negotiate(ctx, ice.Configuration(servers), media, params, Hooks{
		OnRemoteTrack: m.bindRemoteTrack,
		OnData:        m.observeData,
	})
	if err != nil {
		if releaseErr := media.Release(); releaseErr != nil {
			m.logger.Errorf("%v", faults.Teardown("releasing media after failed negotiation", releaseErr))
		}
		return m.abortConnecting(err)
	}

	sess := &Session{
		ID:       uuid.New().String(),
		Pipeline: handle.Context(),
		handle:   handle,
		media:    media,
	}

	m.mu.Lock()
	m.state = StateConnected
	m.session = sess
	m.mu.Unlock()

	m.logger.Infof("session %s connected: pipeline=%s request=%s",
		sess.ID, sess.Pipeline.PipelineID, sess.Pipeline.RequestID)
	return nil
}

// Stop tears the active session down. It acts only from connected: a stop
// while idle (or while a connect is still in flight, when no handle exists
// yet) is a no-op. Teardown errors are logged, never returned, and never
// block the transition back to idle.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.state != StateConnected || m.session == nil {
		m.mu.Unlock()
		m.logger.Debugf("stop ignored: state=%s", m.state)
		return
	}
	m.state = StateStopping
	sess := m.session
	m.session = nil
	m.mu.Unlock()

	if err := sess.handle.Close(); err != nil {
		m.logger.Errorf("%v", faults.Teardown("closing peer session", err))
	}
	if err := sess.media.Release(); err != nil {
		m.logger.Errorf("%v", faults.Teardown("releasing media", err))
	}
	m.toIdle()
	m.logger.Infof("session %s stopped", sess.ID)
}

// Close is the unload path: stop whatever is active.
func (m *Manager) Close() {
	m.Stop()
}

func (m *Manager) bindRemoteTrack(track *webrtc.TrackRemote) {
	m.sink.Bind(track)
	if err := m.sink.Play(); err != nil {
		// autoplay can be refused; the session stays connected
		m.logger.Warnf("playback not started: %v", err)
	}
}

func (m *Manager) observeData(payload []byte) {
	observations, err := m.tracker.ObserveFrame(payload)
	if err != nil {
		m.logger.Debugf("dropping undecodable data channel message: %v", err)
		return
	}
	for _, obs := range observations {
		m.logger.Debugf("detection %s: %s", obs.DetectionID, obs.Label)
	}
}

func (m *Manager) abortConnecting(err error) error {
	m.toIdle()
	m.logger.Errorf("connect failed: %v", err)
	return err
}

func (m *Manager) toIdle() {
	m.sink.Clear()
	m.mu.Lock()
	m.state = StateIdle
	m.mu.Unlock()
}
