package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"hrunity/internal/platform/storage"
)

func TestRequestHashDeterministic(t *testing.T) {
	hash1 := RequestHash([]byte("payload"))
	hash2 := RequestHash([]byte("payload"))
	hash3 := RequestHash([]byte("other"))

	if hash1 != hash2 {
		t.Fatal("expected deterministic hash")
	}
	if hash1 == hash3 {
		t.Fatal("expected different hash for different payload")
	}
}

func TestIdempotentReplaysStoredResponse(t *testing.T) {
	var calls atomic.Int32
	handler := Idempotent(NewIdempotencyStore(storage.NewMemory(), "test"))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))

	send := func(key, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/EMP001/2025-Q1/feedback-requests", bytes.NewBufferString(body))
		req.RemoteAddr = "192.0.2.9:1000"
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send("k1", `{"colleagueIds":["EMP002"]}`)
	if first.Code != http.StatusCreated || calls.Load() != 1 {
		t.Fatalf("expected first call to run, got %d calls=%d", first.Code, calls.Load())
	}

	replay := send("k1", `{"colleagueIds":["EMP002"]}`)
	if replay.Code != http.StatusCreated || replay.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replayed response, got %d", replay.Code)
	}
	if replay.Body.String() != `{"success":true}` || calls.Load() != 1 {
		t.Fatalf("expected handler not to run again, body=%s calls=%d", replay.Body.String(), calls.Load())
	}

	conflict := send("k1", `{"colleagueIds":["EMP003"]}`)
	if conflict.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected conflict for a different body, got %d", conflict.Code)
	}

	send("", `{"colleagueIds":["EMP002"]}`)
	if calls.Load() != 2 {
		t.Fatalf("expected unkeyed request to run, calls=%d", calls.Load())
	}
}

func TestIdempotentSkipsFailedResponses(t *testing.T) {
	var calls atomic.Int32
	handler := Idempotent(NewIdempotencyStore(storage.NewMemory(), "test"))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString(`{}`))
		req.Header.Set(IdempotencyHeader, "k2")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected failed responses not to be remembered, calls=%d", calls.Load())
	}
}
