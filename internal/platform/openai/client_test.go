package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

func newTestClient(t *testing.T, url string, temp *float64) Client {
	t.Helper()
	c, err := NewClient(logger.Nop(), Config{APIKey: "sk-test", BaseURL: url, Model: "test-model", Timeout: 5 * time.Second, Temperature: temp})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func writeOutput(w http.ResponseWriter, text string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"output": []any{
			map[string]any{
				"type": "message",
				"role": "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": text},
				},
			},
		},
	})
}

func TestGenerateJSON_SendsStrictSchemaAndParsesOutput(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer auth")
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		writeOutput(w, `{"score": 8}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	obj, err := c.GenerateJSON(context.Background(), "sys", "usr", "technical_reasoning_v1", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if obj["score"].(float64) != 8 {
		t.Fatalf("unexpected obj: %#v", obj)
	}
	format := got["text"].(map[string]any)["format"].(map[string]any)
	if format["type"] != "json_schema" || format["strict"] != true || format["name"] != "technical_reasoning_v1" {
		t.Fatalf("unexpected format: %#v", format)
	}
	if _, ok := got["temperature"]; ok {
		t.Fatalf("temperature must be omitted when unset")
	}
}

func TestGenerateJSON_MalformedOutputIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeOutput(w, `not json`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.GenerateJSON(context.Background(), "sys", "usr", "x", map[string]any{"type": "object"})
	var mErr *MalformedOutputError
	if !errors.As(err, &mErr) {
		t.Fatalf("expected MalformedOutputError, got %v", err)
	}
}

func TestGenerateJSON_RetriesWithoutTemperatureOnce(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		if n == 1 {
			if _, ok := body["temperature"]; !ok {
				t.Errorf("expected temperature on first call")
			}
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Unsupported parameter: 'temperature' is not supported with this model."}}`))
			return
		}
		if _, ok := body["temperature"]; ok {
			t.Errorf("expected temperature dropped on retry")
		}
		writeOutput(w, `{"ok": true}`)
	}))
	defer srv.Close()

	temp := 0.2
	c := newTestClient(t, srv.URL, &temp)
	if _, err := c.GenerateJSON(context.Background(), "sys", "usr", "x", map[string]any{"type": "object"}); err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestGenerateJSON_HTTPErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.GenerateJSON(context.Background(), "sys", "usr", "x", map[string]any{"type": "object"})
	var hErr *HTTPError
	if !errors.As(err, &hErr) || hErr.HTTPStatusCode() != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	if _, err := NewClient(logger.Nop(), Config{}); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}
