package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/csheth/tripnotes/internal/cards"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewFromEnv(Config{BaseURL: server.URL + "/", Token: token, HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	return client
}

func TestChatSendsSessionAndBearerToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != chatPath {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		var payload ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Message != "hotels in Split" || payload.SessionID != "session_1" {
			t.Errorf("unexpected payload %+v", payload)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reply":"Here are some hotels","intent":"SPECIFIC_SEARCH"}`))
	}, "secret")

	reply, err := client.Chat(context.Background(), ChatRequest{Message: "hotels in Split", SessionID: "session_1"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.Text != "Here are some hotels" || reply.Intent != "SPECIFIC_SEARCH" || reply.Fallback {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestChatReplyKeyPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		want     string
		fallback bool
	}{
		{name: "reply", body: `{"reply":"a","response":"b","message":"c"}`, want: "a"},
		{name: "response", body: `{"response":"b","message":"c"}`, want: "b"},
		{name: "message", body: `{"message":"c"}`, want: "c"},
		{name: "empty reply skipped", body: `{"reply":"","message":"c"}`, want: "c"},
		{name: "none", body: `{"ok":true}`, want: FallbackReply, fallback: true},
		{name: "non string", body: `{"reply":42}`, want: FallbackReply, fallback: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}, "")
			reply, err := client.Chat(context.Background(), ChatRequest{Message: "hi", SessionID: "s"})
			if err != nil {
				t.Fatalf("Chat: %v", err)
			}
			if reply.Text != tt.want || reply.Fallback != tt.fallback {
				t.Fatalf("got %+v, want text %q fallback %v", reply, tt.want, tt.fallback)
			}
		})
	}
}

func TestChatErrors(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("no token configured, got %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail":"upstream down"}`))
	}, "")
	if _, err := client.Chat(context.Background(), ChatRequest{Message: "hi", SessionID: "s"}); err == nil {
		t.Fatal("expected error for 502")
	}
	if _, err := client.Chat(context.Background(), ChatRequest{Message: "  "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	broken := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}, "")
	if _, err := broken.Chat(context.Background(), ChatRequest{Message: "hi", SessionID: "s"}); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestGeneratePlanDecodesOptions(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != plannerPath {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var payload PlanRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Adults != 1 || payload.DepartureDate == "" || payload.ReturnDate == "" {
			t.Errorf("defaults not applied: %+v", payload)
		}
		w.Write([]byte(`{
			"success": true,
			"destination": "Split",
			"transport": [{"id":"flight_1","type":"flight","title":"Ryanair to Split","price":89}],
			"hotels": [{"id":"hotel_1","name":"Hotel Park","rating":4.6,"price_per_night":120}],
			"restaurants": [],
			"activities": [{"id":"activity_1","name":"Diocletian's Palace"}],
			"links": {"flights": "https://example.test/f"}
		}`))
	}, "")

	plan, err := client.GeneratePlan(context.Background(), PlanRequest{Destination: "Split"})
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if plan.Total() != 3 || plan.Mock {
		t.Fatalf("unexpected plan %+v", plan)
	}
	transport := cards.ClassifyAs(cards.Transports, plan.Options(cards.Transports)[0])
	if transport.CardType != "plane" || transport.Price != "89" {
		t.Fatalf("unexpected transport card %+v", transport)
	}
	hotel := cards.ClassifyAs(cards.Hotels, plan.Options(cards.Hotels)[0])
	if hotel.Price != "120" || hotel.Rating != "4.6" {
		t.Fatalf("unexpected hotel card %+v", hotel)
	}
	if plan.Links["flights"] == "" {
		t.Fatal("links should be decoded")
	}

	if _, err := client.GeneratePlan(context.Background(), PlanRequest{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing destination should fail validation, got %v", err)
	}
}

func TestPlanRequestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, 2, 26, 15, 0, 0, 0, time.UTC)
	req := PlanRequest{Destination: " Vienna "}.Normalize(today)
	if req.Destination != "Vienna" || req.Adults != 1 {
		t.Fatalf("unexpected normalized request %+v", req)
	}
	if req.DepartureDate != "2024-03-04" || req.ReturnDate != "2024-03-09" {
		t.Fatalf("unexpected default dates %s..%s", req.DepartureDate, req.ReturnDate)
	}
	kept := PlanRequest{Destination: "Vienna", DepartureDate: "2024-05-01"}.Normalize(today)
	if kept.ReturnDate != "2024-05-06" {
		t.Fatalf("return should follow departure, got %s", kept.ReturnDate)
	}
	if err := (PlanRequest{Destination: "Vienna", DepartureDate: "May 1", Adults: 1}).Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
