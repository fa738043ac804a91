package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"

	"github.com/timecop-bot/timecop/internal/session"
)

// Responder processes one chat event and produces the reply text
type Responder interface {
	HandleMessage(ctx context.Context, event session.Event) (string, error)
}

// WebhookHandler receives chat transport callbacks and routes them
// through the conversation engine.
type WebhookHandler struct {
	engine  Responder
	logger  *zap.Logger
	limiter *limiter.Limiter
}

// WebhookOption configures optional webhook handler dependencies
type WebhookOption func(*WebhookHandler)

// WithWebhookRateLimiter enables per-user message limiting. The limit is
// keyed by the payload's user_id, not the caller's IP: all messages arrive
// from the same transport callback address.
func WithWebhookRateLimiter(l *limiter.Limiter) WebhookOption {
	return func(h *WebhookHandler) {
		h.limiter = l
	}
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(engine Responder, logger *zap.Logger, opts ...WebhookOption) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &WebhookHandler{engine: engine, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// webhookRequest is the transport payload for one inbound message
type webhookRequest struct {
	UserID    int64  `json:"user_id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// HandleWebhook handles POST /webhook
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if req.UserID == 0 {
		respondJSONError(w, http.StatusBadRequest, "invalid_request", "user_id is required")
		return
	}

	if h.limiter != nil {
		lctx, err := h.limiter.Get(r.Context(), fmt.Sprintf("user:%d", req.UserID))
		if err != nil {
			// A broken limiter store must not take messaging down
			h.logger.Warn("rate_limit_check_failed",
				zap.Int64("user_id", req.UserID),
				zap.Error(err),
			)
		} else if lctx.Reached {
			respondJSONError(w, http.StatusTooManyRequests, "rate_limited", "too many messages, wait a moment")
			return
		}
	}

	ts := time.Now()
	if req.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
			ts = parsed
		}
	}

	reply, err := h.engine.HandleMessage(r.Context(), session.Event{
		UserID:    req.UserID,
		Text:      req.Text,
		Timestamp: ts,
	})
	if err != nil {
		h.logger.Error("webhook_handling_failed",
			zap.Int64("user_id", req.UserID),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "internal_error", "failed to process message")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
