package server

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/veillard/tabulaire/internal/events"
)

func TestMatchTopicPattern(t *testing.T) {
	for _, tc := range []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"tabulaire.record.created", "tabulaire.record.created", true},
		{"tabulaire.record.*", "tabulaire.record.created", true},
		{"tabulaire.record.*", "tabulaire.table.created", false},
		{"tabulaire.>", "tabulaire.record.created", true},
		{"tabulaire.>", "tabulaire", false},
		{"*.record.created", "tabulaire.record.created", true},
		{"tabulaire.record", "tabulaire.record.created", false},
	} {
		if got := matchTopicPattern(tc.pattern, tc.topic); got != tc.want {
			t.Errorf("matchTopicPattern(%q, %q) = %v, want %v", tc.pattern, tc.topic, got, tc.want)
		}
	}
}

func TestSSEHub_EventsSince(t *testing.T) {
	h := newSSEHub()
	h.broadcast("tabulaire.record.created", []byte(`{"n":1}`))
	h.broadcast("tabulaire.record.updated", []byte(`{"n":2}`))
	h.broadcast("tabulaire.record.deleted", []byte(`{"n":3}`))

	replay := h.eventsSince(1)
	if len(replay) != 2 {
		t.Fatalf("len(replay) = %d, want 2", len(replay))
	}
	if replay[0].Topic != "tabulaire.record.updated" || replay[1].Topic != "tabulaire.record.deleted" {
		t.Errorf("replay topics = %q, %q", replay[0].Topic, replay[1].Topic)
	}
}

func TestSSEHub_TopicFilter(t *testing.T) {
	h := newSSEHub()
	c := h.subscribe([]string{"tabulaire.record.*"})
	defer h.unsubscribe(c)

	h.broadcast("tabulaire.table.created", []byte(`{}`))
	h.broadcast("tabulaire.record.created", []byte(`{}`))

	select {
	case evt := <-c.ch:
		if evt.Topic != "tabulaire.record.created" {
			t.Errorf("topic = %q", evt.Topic)
		}
	default:
		t.Fatal("expected a delivered event")
	}
	select {
	case evt := <-c.ch:
		t.Errorf("unexpected extra event %q", evt.Topic)
	default:
	}
}

func TestEventStream_Replay(t *testing.T) {
	fs := newFakeStore()
	srv := NewServer(fs, &events.NoopPublisher{}, "Projet")
	srv.broadcastEvent("tabulaire.record.created", map[string]any{"record_id": 1})
	srv.broadcastEvent("tabulaire.record.updated", map[string]any{"record_id": 1})

	ts := httptest.NewServer(srv.NewHTTPHandler(""))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Last-Event-ID", "1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/events/stream: %v", err)
	}
	defer resp.Body.Close()

	// Only events after the Last-Event-ID should be replayed.
	sc := bufio.NewScanner(resp.Body)
	var lines []string
	for sc.Scan() {
		line := sc.Text()
		lines = append(lines, line)
		if strings.Contains(line, "tabulaire.record.updated") {
			break
		}
		if strings.Contains(line, "tabulaire.record.created") {
			t.Fatalf("event before Last-Event-ID replayed: %v", lines)
		}
	}
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "id:") {
		t.Errorf("stream = %v", lines)
	}
}
