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
	"github.com/rapidaai/fitcoach/pkg/commons"
)

// SampleSource is a MediaSource backed by a single sample-fed video track.
// It stands in for a real camera in the CLI exerciser; callers push frames
// into the returned track themselves.
type SampleSource struct {
	mimeType string
}

func NewSampleSource(mimeType string) *SampleSource {
	if mimeType == "" {
		mimeType = webrtc.MimeTypeVP8
	}
	return &SampleSource{mimeType: mimeType}
}

func (s *SampleSource) Acquire(_ context.Context) (MediaStream, error) {
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: s.mimeType},
		"video", "fitcoach-"+uuid.New().String(),
	)
	if err != nil {
		return nil, err
	}
	return &sampleStream{track: track}, nil
}

type sampleStream struct {
	track *webrtc.TrackLocalStaticSample

	mu       sync.Mutex
	released bool
}

func (s *sampleStream) Tracks() []webrtc.TrackLocal {
	return []webrtc.TrackLocal{s.track}
}

// Track exposes the writable side for frame producers.
func (s *sampleStream) Track() *webrtc.TrackLocalStaticSample { return s.track }

func (s *sampleStream) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// nothing to close on a static track; the flag keeps release idempotent
	s.released = true
	return nil
}

// LogSink reports remote stream activity through the logger. It is the sink
// of choice for headless runs where no video element exists.
type LogSink struct {
	logger commons.Logger

	mu    sync.Mutex
	track *webrtc.TrackRemote
}

func NewLogSink(logger commons.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Bind(track *webrtc.TrackRemote) {
	s.mu.Lock()
	s.track = track
	s.mu.Unlock()
	s.logger.Infof("remote stream bound: codec=%s", track.Codec().MimeType)
}

func (s *LogSink) Play() error { return nil }

func (s *LogSink) Clear() {
	s.mu.Lock()
	s.track = nil
	s.mu.Unlock()
}
