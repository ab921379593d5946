// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package reps tracks back-squat movement per detected person and counts
// completed repetitions from the left knee angle reported by the remote
// pose pipeline.
package reps

import (
	"fmt"
	"sync"
)

// Phase is the instantaneous posture derived from the left knee angle.
type Phase string

const (
	PhaseStanding  Phase = "standing"
	PhaseHalfSquat Phase = "half_squat"
	PhaseDeepSquat Phase = "deep_squat"
	PhaseUnknown   Phase = "unknown"
)

// Knee-angle thresholds in degrees.
const (
	standingAngle  = 170
	deepSquatAngle = 73
)

// PhaseFor maps a left knee angle to a squat phase. A nil angle (keypoints
// missing) is PhaseUnknown and never advances the state machine.
func PhaseFor(leftKneeAngle *float64) Phase {
	switch {
	case leftKneeAngle == nil:
		return PhaseUnknown
	case *leftKneeAngle > standingAngle:
		return PhaseStanding
	case *leftKneeAngle > deepSquatAngle:
		return PhaseHalfSquat
	default:
		return PhaseDeepSquat
	}
}

// State is a position in the movement cycle.
type State string

const (
	StateStart      State = "START"
	StateStanding   State = "STANDING"
	StateDescending State = "DESCENDING"
	StateSquatting  State = "SQUATTING"
	StateAscending  State = "ASCENDING"
)

// stateLabels matches the display strings of the deployed workflow,
// including SQUATTING rendering as "Asc".
var stateLabels = map[State]string{
	StateStart:      "Start",
	StateStanding:   "Up",
	StateDescending: "Dsc",
	StateSquatting:  "Asc",
	StateAscending:  "Asc",
}

// Label renders the overlay text for a state and rep count.
func Label(state State, reps int) string {
	label, ok := stateLabels[state]
	if !ok {
		label = "Start"
	}
	return fmt.Sprintf("%s: Reps %d", label, reps)
}

// Progress is the tracked movement of one detection.
type Progress struct {
	PreviousState State
	State         State
	Reps          int
}

// Tracker keeps one movement state machine per detection id. Safe for the
// single event-driven control flow of the session manager; the mutex exists
// so independent instances can also be poked from tests.
type Tracker struct {
	mu     sync.Mutex
	states map[string]*Progress
}

func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]*Progress)}
}

// Advance feeds one phase observation for a detection and returns the
// resulting progress. Cycle:
//
//	START → STANDING → DESCENDING → SQUATTING → ASCENDING → STANDING (+1 rep)
//
// PhaseUnknown leaves the machine untouched.
func (t *Tracker) Advance(detectionID string, phase Phase) Progress {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.states[detectionID]
	if !ok {
		p = &Progress{PreviousState: StateStart, State: StateStart}
		t.states[detectionID] = p
	}

	if phase == PhaseUnknown {
		return *p
	}

	previous := p.State
	next := p.State
	switch p.State {
	case StateStart:
		if phase == PhaseStanding {
			next = StateStanding
		}
	case StateStanding:
		if phase == PhaseHalfSquat {
			next = StateDescending
		}
	case StateDescending:
		if phase == PhaseDeepSquat {
			next = StateSquatting
		}
	case StateSquatting:
		if phase == PhaseHalfSquat {
			next = StateAscending
		}
	case StateAscending:
		if phase == PhaseStanding {
			next = StateStanding
			p.Reps++
		}
	}

	p.PreviousState = previous
	p.State = next
	return *p
}

// Progress returns the tracked movement for a detection, if any.
func (t *Tracker) Progress(detectionID string) (Progress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.states[detectionID]
	if !ok {
		return Progress{}, false
	}
	return *p, true
}

// Reset clears one detection's state, or every detection when id is empty.
func (t *Tracker) Reset(detectionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if detectionID == "" {
		t.states = make(map[string]*Progress)
		return
	}
	delete(t.states, detectionID)
}
