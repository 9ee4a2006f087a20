package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// ServiceClient Tests
// =============================================================================

func TestNewServiceClient(t *testing.T) {
	client := NewServiceClient(ServiceClientConfig{
		BaseURL:    "http://localhost:3000/",
		Timeout:    10 * time.Second,
		MaxRetries: 3,
	})

	if client == nil {
		t.Fatal("NewServiceClient() returned nil")
	}
	if client.baseURL != "http://localhost:3000" {
		t.Errorf("baseURL = %s, want trailing slash trimmed", client.baseURL)
	}
	if client.maxRetries != 3 {
		t.Errorf("maxRetries = %d, want 3", client.maxRetries)
	}
}

func TestNewServiceClient_Defaults(t *testing.T) {
	client := NewServiceClient(ServiceClientConfig{BaseURL: "http://localhost:3000"})

	if client.maxRetries != 2 {
		t.Errorf("default maxRetries = %d, want 2", client.maxRetries)
	}
	if client.httpClient.Timeout != 30*time.Second {
		t.Errorf("default timeout = %s, want 30s", client.httpClient.Timeout)
	}
}

func TestServiceClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %s, want application/json", r.Header.Get("Content-Type"))
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["key"] != "value" {
			t.Errorf("body[key] = %s, want value", body["key"])
		}

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewServiceClient(ServiceClientConfig{BaseURL: server.URL})

	resp, err := client.Post(context.Background(), "/test", map[string]string{"key": "value"})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want 201", resp.StatusCode)
	}
}

func TestServiceClient_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get(TraceIDHeader); got != "trace-1" {
			t.Errorf("%s = %q, want trace-1", TraceIDHeader, got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewServiceClient(ServiceClientConfig{BaseURL: server.URL, BearerToken: "secret-token"})

	resp, err := client.Get(WithTraceID(context.Background(), "trace-1"), "/test")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()
}

func TestServiceClient_RetryOnRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewServiceClient(ServiceClientConfig{BaseURL: server.URL, MaxRetries: 3})

	resp, err := client.Get(context.Background(), "/test")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestServiceClient_NoRetryOnBadRequest(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		WriteError(w, http.StatusBadRequest, "Invalid public key")
	}))
	defer server.Close()

	client := NewServiceClient(ServiceClientConfig{BaseURL: server.URL})

	resp, err := client.Get(context.Background(), "/test")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	err = DecodeEnvelope(resp, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "Invalid public key" {
		t.Errorf("unexpected APIError %+v", apiErr)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

// =============================================================================
// Envelope Tests
// =============================================================================

func TestWriteSuccess_DecodeEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"pubkey": "abc"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("body = %s", rec.Body.String())
	}

	var data struct {
		Pubkey string `json:"pubkey"`
	}
	if err := DecodeEnvelope(rec.Result(), &data); err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if data.Pubkey != "abc" {
		t.Errorf("pubkey = %q", data.Pubkey)
	}
}

func TestDecodeEnvelope_NonJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusBadGateway)
	rec.WriteString("upstream down")

	err := DecodeEnvelope(rec.Result(), nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "upstream down" {
		t.Fatalf("expected APIError with body text, got %v", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	var payload struct {
		Message string `json:"message"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"hi"}`))
	if err := DecodeJSON(req, &payload); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if payload.Message != "hi" {
		t.Errorf("message = %q", payload.Message)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := DecodeJSON(req, &payload); err != nil {
		t.Errorf("empty body should decode, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":`))
	if err := DecodeJSON(req, &payload); err == nil {
		t.Error("expected error for truncated JSON")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat(" ", MaxRequestBody+1)))
	if err := DecodeJSON(req, &payload); err == nil {
		t.Error("expected error for oversized body")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"hi","amount":1}`))
	if err := DecodeJSON(req, &payload); err == nil {
		t.Error("expected error for unknown field")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"hi"} {}`))
	if err := DecodeJSON(req, &payload); err == nil {
		t.Error("expected error for trailing data")
	}
}

type requiredMessage struct {
	Message *string `json:"message"`
}

func (m *requiredMessage) Validate() error {
	if m.Message == nil {
		return errors.New("missing field: message")
	}
	return nil
}

func TestDecodeJSON_Validator(t *testing.T) {
	var payload requiredMessage
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	err := DecodeJSON(req, &payload)
	if err == nil || !strings.Contains(err.Error(), "missing field: message") {
		t.Fatalf("expected missing field error, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := DecodeJSON(req, &payload); err == nil {
		t.Error("empty body should still be validated")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":""}`))
	if err := DecodeJSON(req, &payload); err != nil {
		t.Errorf("present empty message should pass, got %v", err)
	}
}

func TestWriteServiceError_HidesUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	serviceErr := WriteServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("db password leaked"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
	if serviceErr == nil || serviceErr.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected service error %+v", serviceErr)
	}
}
