package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestNewRequestIDReturnsUUID(t *testing.T) {
	id := NewRequestID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected valid UUID, got %q: %v", id, err)
	}
}

func TestRequestIDMiddlewareReusesValidInboundID(t *testing.T) {
	tests := []struct {
		name    string
		inbound string
		reused  bool
	}{
		{name: "valid uuid", inbound: "6f1c2b9e-8a43-4f3e-9a57-0c2d1f5e7b11", reused: true},
		{name: "not a uuid", inbound: "<script>", reused: false},
		{name: "absent", inbound: "", reused: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.inbound != "" {
				req.Header.Set(RequestIDHeader, tc.inbound)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			if got != seen {
				t.Fatalf("header %q and context %q differ", got, seen)
			}
			if (got == tc.inbound) != tc.reused {
				t.Fatalf("inbound %q, got %q, reused want %v", tc.inbound, got, tc.reused)
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("expected valid UUID, got %q", got)
			}
		})
	}
}

func TestContextIDsRoundTrip(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "abc-123")
	ctx = ContextWithSessionID(ctx, "sess-1")

	if got := RequestIDFromContext(ctx); got != "abc-123" {
		t.Fatalf("expected request id %q, got %q", "abc-123", got)
	}
	if got := SessionIDFromContext(ctx); got != "sess-1" {
		t.Fatalf("expected session id %q, got %q", "sess-1", got)
	}
}

func TestContextIDsWhenMissingOrWrongType(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		if got := SessionIDFromContext(context.Background()); got != "" {
			t.Fatalf("expected empty string, got %q", got)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), RequestIDKey, 42)
		if got := RequestIDFromContext(ctx); got != "" {
			t.Fatalf("expected empty string, got %q", got)
		}
	})
}
