// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Chat_Success(t *testing.T) {
	var gotReq ChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/chat" {
			t.Errorf("path = %s, want /chat", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		json.NewEncoder(w).Encode(ChatResponse{
			Response:  "The disclosure deadline is 30 days.",
			ToolCalls: []ToolCall{{Name: "search_regulations"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Chat(context.Background(), "what is the deadline?", "thread-1")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.Response != "The disclosure deadline is 30 days." {
		t.Errorf("Response = %q", resp.Response)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "search_regulations" {
		t.Errorf("ToolCalls = %+v", resp.ToolCalls)
	}
	if gotReq.Message != "what is the deadline?" {
		t.Errorf("request message = %q", gotReq.Message)
	}
	if gotReq.ThreadID != "thread-1" {
		t.Errorf("request thread_id = %q", gotReq.ThreadID)
	}
}

func TestClient_Chat_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"detail":"agent crashed"}`},
		{"bad request", http.StatusBadRequest, `{"detail":"message required"}`},
		{"unparseable body", http.StatusBadGateway, "upstream timeout"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			_, err := client.Chat(context.Background(), "hello", "thread-1")
			if err == nil {
				t.Fatal("expected error for non-2xx response")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error type = %T, want *APIError", err)
			}
			if apiErr.Status != tc.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tc.status)
			}
		})
	}
}

func TestClient_Chat_EmptyReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatResponse{Response: "   "})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Chat(context.Background(), "hello", "thread-1")
	if !errors.Is(err, ErrEmptyReply) {
		t.Errorf("err = %v, want ErrEmptyReply", err)
	}
}

func TestClient_Chat_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Chat(context.Background(), "hello", "thread-1"); err == nil {
		t.Fatal("expected error for malformed response body")
	}
}

func TestClient_Chat_Unavailable(t *testing.T) {
	// Nothing is listening on this port.
	client := NewClient("http://127.0.0.1:1")
	_, err := client.Chat(context.Background(), "hello", "thread-1")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestClient_Chat_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(server.URL)
	if _, err := client.Chat(ctx, "hello", "thread-1"); err == nil {
		t.Fatal("expected error when context deadline is exceeded")
	}
}

func TestClient_Health(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"healthy", http.StatusOK, `{"status":"healthy","service":"sebi-compliance-agent"}`, false},
		{"ok alias", http.StatusOK, `{"status":"OK","service":"agent"}`, false},
		{"degraded", http.StatusOK, `{"status":"degraded","service":"agent"}`, true},
		{"server down", http.StatusServiceUnavailable, `{"detail":"shutting down"}`, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/" {
					t.Errorf("path = %s, want /", r.URL.Path)
				}
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			_, err := client.Health(context.Background())
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Health failed: %v", err)
			}
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient("")
	if client.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", client.BaseURL(), DefaultBaseURL)
	}

	// Trailing slashes are stripped so path joins stay predictable.
	client = NewClient("http://example.com/")
	if client.BaseURL() != "http://example.com" {
		t.Errorf("BaseURL = %q, want trailing slash stripped", client.BaseURL())
	}
}
