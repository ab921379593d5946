// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package reps

import (
	"encoding/json"
	"fmt"
	"math"
)

// MinKeypointConfidence gates keypoints out of the angle computation when
// the model reports them but barely saw them.
const MinKeypointConfidence = 0.1

// Keypoint is one named joint of a pose prediction.
type Keypoint struct {
	Name       string  `json:"class_name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Prediction is one detected person from the data channel.
type Prediction struct {
	DetectionID string     `json:"detection_id"`
	Keypoints   []Keypoint `json:"keypoints"`
}

// FramePayload is the per-frame structured output delivered on the
// data channel.
type FramePayload struct {
	Predictions []Prediction `json:"predictions"`
}

// Observation is the per-detection result of processing one frame.
type Observation struct {
	DetectionID string
	Progress    Progress
	Label       string
}

// Angle returns the angle in degrees at vertex b of the triangle a-b-c.
func Angle(ax, ay, bx, by, cx, cy float64) float64 {
	bax, bay := ax-bx, ay-by
	bcx, bcy := cx-bx, cy-by
	dot := bax*bcx + bay*bcy
	norm := math.Hypot(bax, bay)*math.Hypot(bcx, bcy) + 1e-7
	cos := dot / norm
	// floating point can push the cosine fractionally out of range
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// LeftKneeAngle computes the hip-knee-ankle angle of the left leg, or nil
// when any of the three keypoints is missing or below confidence.
func LeftKneeAngle(keypoints []Keypoint) *float64 {
	byName := make(map[string]Keypoint, len(keypoints))
	for _, kp := range keypoints {
		if kp.Confidence > 0 && kp.Confidence < MinKeypointConfidence {
			continue
		}
		byName[kp.Name] = kp
	}

	hip, okHip := byName["left_hip"]
	knee, okKnee := byName["left_knee"]
	ankle, okAnkle := byName["left_ankle"]
	if !okHip || !okKnee || !okAnkle {
		return nil
	}

	angle := Angle(hip.X, hip.Y, knee.X, knee.Y, ankle.X, ankle.Y)
	return &angle
}

// ObserveFrame decodes one data-channel message and advances the tracker
// for every prediction in it.
func (t *Tracker) ObserveFrame(payload []byte) ([]Observation, error) {
	var frame FramePayload
	if err := json.Unmarshal(payload, &frame); err != nil {
		return nil, err
	}

	observations := make([]Observation, 0, len(frame.Predictions))
	for i, prediction := range frame.Predictions {
		id := prediction.DetectionID
		if id == "" {
			id = fmt.Sprintf("prediction_%d", i)
		}
		progress := t.Advance(id, PhaseFor(LeftKneeAngle(prediction.Keypoints)))
		observations = append(observations, Observation{
			DetectionID: id,
			Progress:    progress,
			Label:       Label(progress.State, progress.Reps),
		})
	}
	return observations, nil
}
