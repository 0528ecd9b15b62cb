// Package calcweb exposes calculation sessions over HTTP: the HTML page with
// its form actions, and a JSON API over the same session.
package calcweb

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the web layer's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calcweb")

// Handler serves every session route.
type Handler struct {
	store      *session.Store
	cookieName string
}

// NewHandler returns a handler over store. Sessions are tracked with a
// cookie called cookieName.
func NewHandler(store *session.Store, cookieName string) *Handler {
	return &Handler{store: store, cookieName: cookieName}
}

// session resolves the caller's session, issuing a cookie for new ones.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	var id string
	if c, err := r.Cookie(h.cookieName); err == nil {
		id = c.Value
	}

	s, created, err := h.store.GetOrCreate(id)
	if err != nil {
		return nil, err
	}
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     h.cookieName,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s, nil
}

// dropSession forgets the caller's session, if any, and expires its cookie.
// It reports whether a session was removed.
func (h *Handler) dropSession(w http.ResponseWriter, r *http.Request) bool {
	c, err := r.Cookie(h.cookieName)
	if err != nil {
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if _, ok := h.store.Get(c.Value); !ok {
		return false
	}
	h.store.Delete(c.Value)
	return true
}

// startSpan opens a span for a session action and returns a logger bound to it.
func startSpan(r *http.Request, action string) (context.Context, trace.Span, *zap.Logger) {
	ctx, span := tracer.Start(r.Context(), "session."+action,
		trace.WithAttributes(
			attribute.String("session.action", action),
			attribute.String("request.id", observability.RequestIDFromContext(r.Context())),
		),
	)
	return ctx, span, observability.LoggerWithTrace(ctx)
}

// Page handles GET /.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		h.internalError(r.Context(), w, "page", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.WritePage(w); err != nil {
		observability.LoggerWithTrace(r.Context()).Error("page write failed",
			zap.String("session_id", s.ID),
			zap.Error(err),
		)
	}
}

// Open handles POST /session/open.
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "open", func(ctx context.Context, s *session.Session) error {
		return s.Open()
	})
}

// Close handles POST /session/close and POST /session/cancel.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "close", func(ctx context.Context, s *session.Session) error {
		return s.Close()
	})
}

// Dismiss handles POST /session/dismiss, a click whose target is named in
// the form field "target".
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "dismiss", func(ctx context.Context, s *session.Session) error {
		_, err := s.Dismiss(r.PostFormValue("target"))
		return err
	})
}

// Key handles POST /session/key: the activation key pressed in the operand
// field named by "field".
func (h *Handler) Key(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "key", func(ctx context.Context, s *session.Session) error {
		field := session.Field(r.PostFormValue("field"))
		_, _, err := s.KeyEnter(ctx, field, r.PostFormValue("x"), r.PostFormValue("y"), r.PostFormValue("op"))
		return err
	})
}

// Calculate handles POST /session/calculate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "calculate", func(ctx context.Context, s *session.Session) error {
		_, err := s.Submit(ctx, r.PostFormValue("x"), r.PostFormValue("y"), r.PostFormValue("op"))
		return err
	})
}

// Finish handles POST /session/finish.
func (h *Handler) Finish(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "finish", func(ctx context.Context, s *session.Session) error {
		return s.Finish(ctx)
	})
}

// Reset handles POST /session/reset. The history is discarded and the next
// page load starts a fresh session.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	_, span, logger := startSpan(r, "reset")
	defer span.End()

	removed := h.dropSession(w, r)
	span.SetAttributes(attribute.Bool("session.removed", removed))
	logger.Info("session reset", zap.Bool("removed", removed))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// action is the shared implementation of all form posts: run fn against
// the caller's session, then send the browser back to the page. Validation
// failures and out-of-order clicks are already visible on the page and do
// not fail the request.
func (h *Handler) action(w http.ResponseWriter, r *http.Request, name string, fn func(context.Context, *session.Session) error) {
	ctx, span, logger := startSpan(r, name)
	defer span.End()

	if err := r.ParseForm(); err != nil {
		h.internalError(ctx, w, name, fmt.Errorf("parse form: %w", err))
		return
	}

	s, err := h.session(w, r)
	if err != nil {
		h.internalError(ctx, w, name, err)
		return
	}
	span.SetAttributes(attribute.String("session.id", s.ID))
	ctx = observability.ContextWithSessionID(ctx, s.ID)

	err = fn(ctx, s)
	var ve *calculator.ValidationError
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.As(err, &ve), errors.Is(err, session.ErrNotOpen):
		span.AddEvent("action.ignored", trace.WithAttributes(attribute.String("reason", err.Error())))
		logger.Info("session action not applied",
			zap.String("action", name),
			zap.String("session_id", s.ID),
			zap.String("reason", err.Error()),
		)
	default:
		h.internalError(ctx, w, name, err)
		return
	}

	span.SetAttributes(attribute.String("session.state", s.State().String()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) internalError(ctx context.Context, w http.ResponseWriter, name string, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, "session action failed")

	observability.LoggerWithTrace(ctx).Error("session action failed",
		zap.String("action", name),
		zap.Error(err),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
