// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package ice

import (
	"encoding/json"
	"strings"

	"github.com/pion/webrtc/v4"
)

// DefaultSTUNURL is always the first entry of any server list we assemble.
const DefaultSTUNURL = "stun:stun.l.google.com:19302"

// Server is the browser-safe RTCIceServer shape. Exactly these three fields:
// anything else (a provider ttl, for example) makes strict ICE validation
// reject the whole server list on the client.
type Server struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

// Result is the tagged outcome of normalizing a raw TURN credential
// response: either a valid Server or a reason it was rejected.
type Result struct {
	server Server
	reason string
	valid  bool
}

func (r Result) Valid() bool    { return r.valid }
func (r Result) Server() Server { return r.server }
func (r Result) Reason() string { return r.reason }

func valid(s Server) Result        { return Result{server: s, valid: true} }
func invalid(reason string) Result { return Result{reason: reason} }

// rawTurnResponse tolerates the provider's loose shape: urls may be a single
// string or an array, and extra fields (ttl and friends) are ignored here
// and stripped by construction of Server.
type rawTurnResponse struct {
	URLs       json.RawMessage `json:"urls"`
	Username   string          `json:"username"`
	Credential string          `json:"credential"`
}

// NormalizeTurn validates and normalizes a raw TURN credential payload into
// a Server. Any shape problem rejects the whole payload; callers degrade to
// STUN-only rather than forwarding a partially usable entry.
func NormalizeTurn(payload []byte) Result {
	var raw rawTurnResponse
	if err := json.Unmarshal(payload, &raw); err != nil {
		return invalid("malformed json: " + err.Error())
	}

	urls, err := normalizeURLs(raw.URLs)
	if err != "" {
		return invalid(err)
	}
	if strings.TrimSpace(raw.Username) == "" {
		return invalid("missing username")
	}
	if strings.TrimSpace(raw.Credential) == "" {
		return invalid("missing credential")
	}

	return valid(Server{
		URLs:       urls,
		Username:   raw.Username,
		Credential: raw.Credential,
	})
}

func normalizeURLs(raw json.RawMessage) ([]string, string) {
	if len(raw) == 0 {
		return nil, "missing urls"
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			return nil, "empty url"
		}
		return []string{single}, ""
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, "urls is neither string nor string array"
	}
	if len(many) == 0 {
		return nil, "empty urls array"
	}
	for _, u := range many {
		if strings.TrimSpace(u) == "" {
			return nil, "empty url in array"
		}
	}
	return many, ""
}

// BuildServerList assembles the session's ICE servers: the STUN entry first,
// then the TURN entry when one survived validation. turn == nil means
// STUN-only connectivity.
func BuildServerList(turn *Server) []Server {
	servers := []Server{{URLs: []string{DefaultSTUNURL}}}
	if turn != nil {
		servers = append(servers, *turn)
	}
	return servers
}

// Configuration converts a server list into a pion webrtc.Configuration.
func Configuration(servers []Server) webrtc.Configuration {
	cfg := webrtc.Configuration{}
	for _, s := range servers {
		if len(s.URLs) == 0 {
			// a malformed entry rejects the whole list downstream
			continue
		}
		cfg.ICEServers = append(cfg.ICEServers, webrtc.ICEServer{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: s.Credential,
		})
	}
	return cfg
}
