package reps

import "testing"

func leg(hipX, hipY, kneeX, kneeY, ankleX, ankleY float64) []Keypoint {
	return []Keypoint{
		{Name: "left_hip", X: hipX, Y: hipY, Confidence: 0.9},
		{Name: "left_knee", X: kneeX, Y: kneeY, Confidence: 0.9},
		{Name: "left_ankle", X: ankleX, Y: ankleY, Confidence: 0.9},
	}
}

func TestLeftKneeAngle(t *testing.T) {
	t.Run("straight leg", func(t *testing.T) {
		angle := LeftKneeAngle(leg(100, 0, 100, 50, 100, 100))
		if angle == nil {
			t.Fatal("expected an angle")
		}
		if *angle < 179 {
			t.Errorf("angle = %f, want ~180", *angle)
		}
	})

	t.Run("missing keypoint", func(t *testing.T) {
		kps := leg(0, 0, 0, 1, 0, 2)[:2] // no ankle
		if LeftKneeAngle(kps) != nil {
			t.Error("expected nil angle without the ankle")
		}
	})

	t.Run("low confidence keypoint discarded", func(t *testing.T) {
		kps := leg(0, 0, 0, 1, 0, 2)
		kps[1].Confidence = 0.01
		if LeftKneeAngle(kps) != nil {
			t.Error("expected nil angle with an unreliable knee")
		}
	})

	t.Run("zero confidence treated as absent field", func(t *testing.T) {
		kps := leg(100, 0, 100, 50, 100, 100)
		for i := range kps {
			kps[i].Confidence = 0
		}
		if LeftKneeAngle(kps) == nil {
			t.Error("keypoints without a confidence field should still count")
		}
	})
}

func TestObserveFrame(t *testing.T) {
	tracker := NewTracker()

	payload := []byte(`{"predictions":[{"detection_id":"d1","keypoints":[
		{"class_name":"left_hip","x":100,"y":0,"confidence":0.9},
		{"class_name":"left_knee","x":100,"y":50,"confidence":0.9},
		{"class_name":"left_ankle","x":100,"y":100,"confidence":0.9}
	]}]}`)

	observations, err := tracker.ObserveFrame(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(observations) != 1 {
		t.Fatalf("got %d observations, want 1", len(observations))
	}
	obs := observations[0]
	if obs.DetectionID != "d1" {
		t.Errorf("detection id = %q", obs.DetectionID)
	}
	// straight leg is standing, so START advanced to STANDING
	if obs.Progress.State != StateStanding {
		t.Errorf("state = %s, want %s", obs.Progress.State, StateStanding)
	}
	if obs.Label != "Up: Reps 0" {
		t.Errorf("label = %q", obs.Label)
	}
}

func TestObserveFrameFallbackIDs(t *testing.T) {
	tracker := NewTracker()
	observations, err := tracker.ObserveFrame([]byte(`{"predictions":[{},{}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(observations) != 2 {
		t.Fatalf("got %d observations, want 2", len(observations))
	}
	if observations[0].DetectionID != "prediction_0" || observations[1].DetectionID != "prediction_1" {
		t.Errorf("fallback ids wrong: %q, %q", observations[0].DetectionID, observations[1].DetectionID)
	}
}

func TestObserveFrameMalformed(t *testing.T) {
	tracker := NewTracker()
	if _, err := tracker.ObserveFrame([]byte(`not json`)); err == nil {
		t.Error("expected an error for a malformed frame")
	}
}
