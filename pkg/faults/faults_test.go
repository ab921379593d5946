package faults

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"configuration", Configuration("no key"), KindConfiguration},
		{"negotiation", Negotiation("rejected", nil), KindNegotiation},
		{"media", Media("denied", errors.New("permission")), KindMedia},
		{"turn", TurnUnavailable("shape", nil), KindTurnUnavailable},
		{"teardown", Teardown("close", errors.New("boom")), KindTeardown},
		{"wrapped", fmt.Errorf("outer: %w", Media("denied", nil)), KindMedia},
		{"plain error", errors.New("whatever"), KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	err := Negotiation("rejected", errors.New("cause"))
	if !IsKind(err, KindNegotiation) {
		t.Error("expected negotiation kind")
	}
	if IsKind(err, KindConfiguration) {
		t.Error("unexpected configuration kind")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("device busy")
	err := Media("camera", cause)
	if !errors.Is(err, cause) {
		t.Error("cause must survive unwrapping")
	}
}

func TestMarshalDropsCause(t *testing.T) {
	cause := errors.New("dial tcp: secret=abc123 in url")
	encoded, err := json.Marshal(Negotiation("inference service unreachable", cause))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(encoded), "abc123") {
		t.Errorf("marshalled fault leaked its cause: %s", encoded)
	}
	if !strings.Contains(string(encoded), string(KindNegotiation)) {
		t.Errorf("marshalled fault lost its kind: %s", encoded)
	}
}
