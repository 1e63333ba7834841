// Package server implements the tabulaire HTTP/JSON API over a store.Store.
package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/veillard/tabulaire/internal/events"
	"github.com/veillard/tabulaire/internal/store"
)

// Server serves the dynamic-schema REST API: tables, fields, records, and
// the orchestrated multi-table mutations.
type Server struct {
	store     store.Store
	publisher events.Publisher
	sseHub    *sseHub

	// parentTable names the table that project+details orchestration
	// creates project rows in (usually "Projet").
	parentTable string
}

// NewServer returns a Server backed by the given store and publisher.
func NewServer(s store.Store, p events.Publisher, parentTable string) *Server {
	return &Server{
		store:       s,
		publisher:   p,
		sseHub:      newSSEHub(),
		parentTable: parentTable,
	}
}

// publish emits an event to NATS and to connected SSE clients. Publishing is
// best-effort; failures are logged but do not block the caller.
func (s *Server) publish(ctx context.Context, topic string, event any) {
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, topic, event); err != nil {
			slog.Warn("failed to publish event", "topic", topic, "error", err)
		}
	}
	s.broadcastEvent(topic, event)
}

// broadcastEvent fans an event out to connected SSE clients.
func (s *Server) broadcastEvent(topic string, event any) {
	if s.sseHub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event for SSE broadcast", "topic", topic, "error", err)
		return
	}
	s.sseHub.broadcast(topic, payload)
}

// inputError indicates invalid user input. The HTTP layer maps it to 400.
type inputError string

func (e inputError) Error() string { return string(e) }
