// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package preview

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/agencyops/huddle/internal/logging"
	"github.com/agencyops/huddle/internal/metrics"
)

// Service renders a preview and publishes it behind a circuit breaker.
type Service struct {
	renderer Renderer
	store    ObjectStore
	breaker  *gobreaker.CircuitBreaker[string]
}

// NewService wires the renderer and store. The breaker opens after five
// consecutive upload failures and probes again after 30 seconds.
func NewService(renderer Renderer, store ObjectStore) *Service {
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "preview-storage",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				metrics.PreviewBreakerOpen.Set(1)
			} else {
				metrics.PreviewBreakerOpen.Set(0)
			}
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("preview storage breaker state change")
		},
	})

	return &Service{renderer: renderer, store: store, breaker: breaker}
}

// CreatePreview renders the document and uploads it under the user's
// key, overwriting any previous preview. Returns the public URL.
func (s *Service) CreatePreview(ctx context.Context, userID string, doc Document) (string, error) {
	pdf, err := s.renderer.Render(doc)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("previews/%s.pdf", userID)

	uri, err := s.breaker.Execute(func() (string, error) {
		start := time.Now()
		uri, err := s.store.Upload(ctx, key, pdf, "application/pdf")
		metrics.RecordPreviewUpload(time.Since(start), err)
		return uri, err
	})
	if err != nil {
		return "", fmt.Errorf("publish preview: %w", err)
	}
	return uri, nil
}
