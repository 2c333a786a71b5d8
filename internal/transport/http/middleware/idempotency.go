package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"hrunity/internal/platform/storage"
	"hrunity/internal/transport/http/api"
)

const IdempotencyHeader = "Idempotency-Key"

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

// IdempotencyStore remembers the responses of keyed requests on the storage
// adapter so that retries replay instead of repeating side effects.
type IdempotencyStore struct {
	adapter storage.Adapter
	prefix  string
}

type storedResponse struct {
	RequestHash string          `json:"requestHash"`
	Status      int             `json:"status"`
	Body        json.RawMessage `json:"body"`
}

func NewIdempotencyStore(adapter storage.Adapter, namespace string) *IdempotencyStore {
	return &IdempotencyStore{adapter: adapter, prefix: strings.TrimSuffix(namespace, ":") + ":idempotency:"}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *IdempotencyStore) key(actor, endpoint, key string) string {
	return s.prefix + RequestHash([]byte(actor+"\x00"+endpoint+"\x00"+key))
}

func (s *IdempotencyStore) Check(ctx context.Context, actor, endpoint, key, requestHash string) (int, json.RawMessage, bool, error) {
	if s == nil || s.adapter == nil {
		return 0, nil, false, nil
	}
	raw, found, err := s.adapter.Get(ctx, s.key(actor, endpoint, key))
	if err != nil || !found {
		return 0, nil, false, err
	}
	var stored storedResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		return 0, nil, false, fmt.Errorf("decode idempotency record: %w", err)
	}
	if stored.RequestHash != requestHash {
		return 0, nil, false, ErrIdempotencyConflict
	}
	return stored.Status, stored.Body, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, actor, endpoint, key, requestHash string, status int, response json.RawMessage) error {
	if s == nil || s.adapter == nil {
		return nil
	}
	if len(bytes.TrimSpace(response)) == 0 {
		response = json.RawMessage("null")
	}
	raw, err := json.Marshal(storedResponse{RequestHash: requestHash, Status: status, Body: response})
	if err != nil {
		return err
	}
	return s.adapter.Set(ctx, s.key(actor, endpoint, key), raw)
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// Idempotent replays the stored response when a request repeats an
// Idempotency-Key with the same body. Requests without the header pass
// through untouched. Only successful responses are remembered.
func Idempotent(store *IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if key == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			requestID := GetRequestID(r.Context())
			body, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			actor := actorOrIPKey(r)
			endpoint := r.Method + " " + r.URL.Path
			hash := RequestHash(body)

			status, stored, found, err := store.Check(r.Context(), actor, endpoint, key, hash)
			switch {
			case errors.Is(err, ErrIdempotencyConflict):
				api.Fail(w, http.StatusUnprocessableEntity, "idempotency_conflict", err.Error(), requestID)
				return
			case err != nil:
				slog.Warn("idempotency lookup failed", "err", err, "requestId", requestID)
			case found:
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(status)
				_, _ = w.Write(stored)
				return
			}

			capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)
			if capture.status < 200 || capture.status >= 300 {
				return
			}
			if err := store.Save(r.Context(), actor, endpoint, key, hash, capture.status, capture.body.Bytes()); err != nil {
				slog.Warn("idempotency save failed", "err", err, "requestId", requestID)
			}
		})
	}
}
