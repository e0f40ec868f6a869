package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eugenenazirov/confcascade/internal/provider"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler serves configuration lookups from a provider.
type Handler struct {
	provider provider.Provider

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler answering lookups from p.
func NewHandler(p provider.Provider, opts ...HandlerOption) *Handler {
	h := &Handler{
		provider: p,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if strings.TrimSpace(key) == "" {
		writeError(w, http.StatusBadRequest, "Invalid request", "key must not be empty")
		return
	}

	query := r.URL.Query()
	kind := strings.ToLower(strings.TrimSpace(query.Get("type")))
	if kind == "" {
		kind = provider.KindString
	}

	required := false
	if raw := query.Get("required"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request", "required must be a boolean")
			return
		}
		required = parsed
	}

	var (
		value any
		found bool
		err   error
	)
	ctx := r.Context()
	switch kind {
	case provider.KindString:
		value, found, err = h.lookupString(ctx, key, required)
	case provider.KindNumber:
		value, found, err = h.lookupNumber(ctx, key, required)
	default:
		writeError(w, http.StatusBadRequest, "Invalid request", fmt.Sprintf("unsupported type %q, expected string or number", kind))
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, provider.ErrMissingRequiredKey):
			writeError(w, http.StatusNotFound, "Missing required key", err.Error())
		case errors.Is(err, provider.ErrTypeMismatch):
			writeError(w, http.StatusUnprocessableEntity, "Type mismatch", err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "Lookup aborted", err.Error())
		default:
			writeInternalError(w, err)
		}
		return
	}

	if !found {
		writeError(w, http.StatusNotFound, "Not found", fmt.Sprintf("no value for key %q", key))
		return
	}

	writeJSON(w, http.StatusOK, lookupResponse{
		Key:   key,
		Type:  kind,
		Value: jsonValue(value),
	})
}

func (h *Handler) lookupString(ctx context.Context, key string, required bool) (any, bool, error) {
	if required {
		s, err := h.provider.RequireString(ctx, key)
		return s, err == nil, err
	}
	s, ok, err := h.provider.GetString(ctx, key)
	return s, ok, err
}

func (h *Handler) lookupNumber(ctx context.Context, key string, required bool) (any, bool, error) {
	if required {
		n, err := h.provider.RequireNumber(ctx, key)
		return n, err == nil, err
	}
	n, ok, err := h.provider.GetNumber(ctx, key)
	return n, ok, err
}

// jsonValue renders infinities as strings, which encoding/json cannot emit as numbers.
func jsonValue(v any) any {
	if n, ok := v.(float64); ok && math.IsInf(n, 0) {
		if n > 0 {
			return "Infinity"
		}
		return "-Infinity"
	}
	return v
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type lookupResponse struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
