// ABOUTME: Tests for the default HTTP transport against an httptest server.
// ABOUTME: Covers query encoding, auth headers, error decoding, and request ids.

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2389/nv/internal/runner"
)

func TestTransportSendsQueryAndAuth(t *testing.T) {
	var gotPath, gotAuth, gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotLimit = r.URL.Query().Get("limit")
		json.NewEncoder(w).Encode([]map[string]any{{"id": "cus_1"}})
	}))
	defer server.Close()

	fn := New(server.URL, "sk_test_12345", nil)
	response, err := fn(context.Background(), runner.Request{
		Method: "GET",
		Path:   "/customers",
		Query:  map[string]string{"limit": "10"},
	})
	if err != nil {
		t.Fatalf("transport failed: %v", err)
	}

	if gotPath != "/customers" {
		t.Errorf("expected path /customers, got %q", gotPath)
	}
	if gotAuth != "Bearer sk_test_12345" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotLimit != "10" {
		t.Errorf("expected limit=10, got %q", gotLimit)
	}
	if response == nil {
		t.Error("expected decoded response")
	}
}

func TestTransportPostsBody(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": "cus_1"})
	}))
	defer server.Close()

	fn := New(server.URL, "", nil)
	_, err := fn(context.Background(), runner.Request{
		Method: "POST",
		Path:   "/customers",
		Body:   map[string]any{"name": "Ada"},
	})
	if err != nil {
		t.Fatalf("transport failed: %v", err)
	}
	if gotBody["name"] != "Ada" {
		t.Errorf("expected body forwarded, got %v", gotBody)
	}
}

func TestTransportDecodesStructuredError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   "validation_failed",
			"message": "validation failed",
			"details": []map[string]string{{"field": "email", "message": "is invalid"}},
			"requestId": "req_9",
		})
	}))
	defer server.Close()

	fn := New(server.URL, "", nil)
	_, err := fn(context.Background(), runner.Request{Method: "POST", Path: "/customers"})

	var apiErr *runner.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", apiErr.Status)
	}
	if len(apiErr.Details) != 1 || apiErr.Details[0].Field != "email" {
		t.Errorf("expected decoded details, got %v", apiErr.Details)
	}
	if apiErr.RequestID != "req_9" {
		t.Errorf("expected request id from body, got %q", apiErr.RequestID)
	}
}

func TestTransportRequestIDFromHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", "req_hdr")
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	fn := New(server.URL, "", nil)
	_, err := fn(context.Background(), runner.Request{Method: "GET", Path: "/customers/cus_1"})

	var apiErr *runner.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", apiErr.Status)
	}
	if apiErr.RequestID != "req_hdr" {
		t.Errorf("expected header request id, got %q", apiErr.RequestID)
	}
}

func TestTransportEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	fn := New(server.URL, "", nil)
	response, err := fn(context.Background(), runner.Request{Method: "DELETE", Path: "/customers/cus_1"})
	if err != nil {
		t.Fatalf("transport failed: %v", err)
	}
	if response != nil {
		t.Errorf("expected nil response for empty body, got %v", response)
	}
}
