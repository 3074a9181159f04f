package manager

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"walkhub/internal/apperrors"
	"walkhub/internal/models"
)

func TestFetchMappedEvents(t *testing.T) {
	start := int64(1675507200000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("from"); got != "1000" {
			t.Errorf("from = %q, want 1000", got)
		}
		if got := r.URL.Query().Get("to"); got != "2000" {
			t.Errorf("to = %q, want 2000", got)
		}
		json.NewEncoder(w).Encode([]managerEvent{
			{
				ID:             "r-1",
				ItemType:       "group-walk",
				GroupCode:      "KENT01",
				StartDateTime:  &start,
				Title:          "Pilgrims Way linear",
				DistanceMiles:  9.5,
				Attendees:      []string{"a", "b", "c"},
				WalkLeaderName: "Joan Fox",
			},
			{ID: "r-2", ItemType: "group-event", Title: "Quiz night"},
		})
	}))
	defer server.Close()

	c := NewClient(ClientConfig{BaseURL: server.URL, APIKey: "test-key"})
	events, err := c.FetchMappedEvents(context.Background(), 1000, 2000)
	if err != nil {
		t.Fatalf("FetchMappedEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	walk := events[0]
	if walk.ItemType != models.ItemTypeWalk {
		t.Errorf("item type = %q, want group-walk mapped to %q", walk.ItemType, models.ItemTypeWalk)
	}
	if walk.InputSource != models.SourceWalksManager {
		t.Errorf("input source = %q, want %q", walk.InputSource, models.SourceWalksManager)
	}
	if walk.AttendeeCount != 3 {
		t.Errorf("attendee count = %d, want 3", walk.AttendeeCount)
	}
	if walk.StartDateTime == nil || *walk.StartDateTime != start {
		t.Errorf("start = %v, want %d", walk.StartDateTime, start)
	}
	if events[1].ItemType != models.ItemTypeGroupEvent {
		t.Errorf("item type = %q, want %q", events[1].ItemType, models.ItemTypeGroupEvent)
	}
}

func TestFetchMappedEventsUpstreamError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "mirror offline", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(ClientConfig{BaseURL: server.URL})
	_, err := c.FetchMappedEvents(context.Background(), 0, 1)
	if !errors.Is(err, apperrors.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}

	var upstream apperrors.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %T, want UpstreamError", err)
	}
	if upstream.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", upstream.StatusCode)
	}

	// One request, one failure. No retries.
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d requests, want exactly 1", n)
	}
}

func TestFetchMappedEventsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	c := NewClient(ClientConfig{BaseURL: server.URL})
	if _, err := c.FetchMappedEvents(context.Background(), 0, 1); err == nil {
		t.Fatal("want decode error, got nil")
	}
}
