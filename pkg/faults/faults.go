// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package faults

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can choose a user-facing message
// without parsing error strings.
type Kind string

const (
	// KindConfiguration: the proxy is missing its secret key; no remote
	// call was attempted.
	KindConfiguration Kind = "configuration"
	// KindNegotiation: the remote service rejected the offer or returned a
	// malformed answer.
	KindNegotiation Kind = "negotiation"
	// KindMedia: local capture could not be acquired.
	KindMedia Kind = "media"
	// KindTurnUnavailable: TURN credentials could not be fetched or failed
	// validation. Absorbed by callers, never user-facing.
	KindTurnUnavailable Kind = "turn_unavailable"
	// KindTeardown: an error during session release. Logged only.
	KindTeardown Kind = "teardown"
	// KindUnknown is reported for errors that carry no classification.
	KindUnknown Kind = "unknown"
)

// Fault is a classified error. Message must be safe to surface: it never
// carries remote response bodies or credentials.
type Fault struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	cause   error
}

func (f *Fault) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error { return f.cause }

// MarshalJSON keeps the wire shape to kind+message, dropping the cause so
// wrapped transport errors cannot leak through an API response.
func (f *Fault) MarshalJSON() ([]byte, error) {
	type wire struct {
		Kind    Kind   `json:"kind"`
		Message string `json:"message"`
	}
	return json.Marshal(wire{Kind: f.Kind, Message: f.Message})
}

func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Fault {
	return &Fault{Kind: kind, Message: message, cause: cause}
}

func Configuration(message string) *Fault { return New(KindConfiguration, message) }

func Negotiation(message string, cause error) *Fault {
	return Wrap(KindNegotiation, message, cause)
}

func Media(message string, cause error) *Fault { return Wrap(KindMedia, message, cause) }

func TurnUnavailable(message string, cause error) *Fault {
	return Wrap(KindTurnUnavailable, message, cause)
}

func Teardown(message string, cause error) *Fault { return Wrap(KindTeardown, message, cause) }

// KindOf reports the classification of err, unwrapping as needed.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnknown
}

// IsKind reports whether err (or anything it wraps) carries kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
