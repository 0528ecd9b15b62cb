package calcweb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// APIOpen handles POST /api/session/open.
func (h *Handler) APIOpen(w http.ResponseWriter, r *http.Request) {
	h.apiLifecycle(w, r, "open", func(s *session.Session) error { return s.Open() })
}

// APIClose handles POST /api/session/close.
func (h *Handler) APIClose(w http.ResponseWriter, r *http.Request) {
	h.apiLifecycle(w, r, "close", func(s *session.Session) error { return s.Close() })
}

// APIFinish handles POST /api/session/finish.
func (h *Handler) APIFinish(w http.ResponseWriter, r *http.Request) {
	h.apiLifecycle(w, r, "finish", func(s *session.Session) error { return s.Finish(r.Context()) })
}

// APIReset handles POST /api/session/reset.
func (h *Handler) APIReset(w http.ResponseWriter, r *http.Request) {
	_, span, logger := startSpan(r, "api.reset")
	defer span.End()

	removed := h.dropSession(w, r)
	span.SetAttributes(attribute.Bool("session.removed", removed))
	span.SetStatus(codes.Ok, "")
	logger.Info("session reset", zap.Bool("removed", removed))

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) apiLifecycle(w http.ResponseWriter, r *http.Request, name string, fn func(*session.Session) error) {
	ctx, span, logger := startSpan(r, "api."+name)
	defer span.End()

	s, err := h.session(w, r)
	if err != nil {
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), name, "session unavailable", err, http.StatusInternalServerError, w)
		return
	}

	if err := fn(s); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrNotOpen) {
			status = http.StatusConflict
		}
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), name, err.Error(), err, status, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	writeJSON(ctx, span, logger, w, name, http.StatusOK, StateResponse{
		State:   s.State().String(),
		Records: s.History().Len(),
	})
}

// APISubmit handles POST /api/calculations.
func (h *Handler) APISubmit(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "api.submit")
	defer span.End()

	var req CalcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), "submit", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	s, err := h.session(w, r)
	if err != nil {
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), "submit", "session unavailable", err, http.StatusInternalServerError, w)
		return
	}
	ctx = observability.ContextWithSessionID(ctx, s.ID)

	rec, err := s.Submit(ctx, req.X, req.Y, req.Op)
	var ve *calculator.ValidationError
	switch {
	case errors.As(err, &ve):
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), "submit", ve.Notice, err, http.StatusUnprocessableEntity, w)
		return
	case errors.Is(err, session.ErrNotOpen):
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), "submit", err.Error(), err, http.StatusConflict, w)
		return
	case err != nil:
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), "submit", "calculation failed", err, http.StatusInternalServerError, w)
		return
	}

	span.SetAttributes(attribute.Int("history.len", s.History().Len()))
	span.SetStatus(codes.Ok, "")

	logger.Debug("calculation accepted over api",
		zap.String("session_id", s.ID),
		zap.String("expression", rec.Expression()),
	)

	writeJSON(ctx, span, logger, w, "submit", http.StatusCreated, newRecordResponse(rec))
}

// APIHistory handles GET /api/history.
func (h *Handler) APIHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "api.history")
	defer span.End()

	s, err := h.session(w, r)
	if err != nil {
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), "history", "session unavailable", err, http.StatusInternalServerError, w)
		return
	}

	records := s.History().Records()
	resp := HistoryResponse{
		Records:      make([]RecordResponse, 0, len(records)),
		ValidResults: newNumbers(s.History().ValidResults()),
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, newRecordResponse(rec))
	}

	writeJSON(ctx, span, logger, w, "history", http.StatusOK, resp)
}

// APISummary handles GET /api/summary.
func (h *Handler) APISummary(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "api.summary")
	defer span.End()

	s, err := h.session(w, r)
	if err != nil {
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), "summary", "session unavailable", err, http.StatusInternalServerError, w)
		return
	}

	writeJSON(ctx, span, logger, w, "summary", http.StatusOK, newSummaryResponse(s.History()))
}

// writeJSON sends v, or a 500 error body when v cannot be encoded.
func writeJSON(ctx context.Context, span trace.Span, logger *zap.Logger, w http.ResponseWriter, name string, status int, v any) {
	if err := handlers.WriteJSON(w, status, v); err != nil {
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), name, "response encoding failed", err, http.StatusInternalServerError, w)
	}
}
