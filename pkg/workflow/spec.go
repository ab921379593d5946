// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rapidaai/fitcoach/pkg/commons"
)

// Loader resolves a workflow specification from a file path or URL. The
// document is opaque JSON: loaded once, cached for the process lifetime,
// immutable after first successful load. Failed loads are retried on the
// next call rather than cached.
type Loader struct {
	source string
	logger commons.Logger

	mu     sync.Mutex
	cached json.RawMessage
}

func NewLoader(source string, logger commons.Logger) *Loader {
	return &Loader{source: source, logger: logger}
}

// Load returns the memoized workflow document, fetching it on first use.
func (l *Loader) Load(ctx context.Context) (json.RawMessage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		return l.cached, nil
	}

	var (
		payload []byte
		err     error
	)
	if strings.HasPrefix(l.source, "http://") || strings.HasPrefix(l.source, "https://") {
		payload, err = fetch(ctx, l.source)
	} else {
		payload, err = os.ReadFile(l.source)
	}
	if err != nil {
		return nil, err
	}
	if !json.Valid(payload) {
		return nil, errors.New("workflow spec is not valid json")
	}

	l.cached = json.RawMessage(payload)
	l.logger.Infof("workflow spec loaded from %s (%d bytes)", l.source, len(payload))
	return l.cached, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := resty.New().
		SetTimeout(15 * time.Second).
		R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, errors.New("workflow spec fetch failed: " + resp.Status())
	}
	return resp.Body(), nil
}
