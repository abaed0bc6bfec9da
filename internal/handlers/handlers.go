// Package handlers exposes the lifecycle operations over HTTP. Handlers
// decode and validate payloads, delegate to the lifecycle service, and map
// its typed failures to status codes; no business rule lives here.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pentapillisuresh/getbid/internal/lifecycle"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type Handler struct {
	svc      *lifecycle.Service
	validate *validator.Validate
	log      *zap.Logger
}

func NewHandler(svc *lifecycle.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		log:      log,
	}
}

// PingHandler answers "ok" for liveness checks.
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// decodeJSON reads a size-capped JSON body into dst and runs struct
// validation when dst carries validate tags.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		h.writeError(w, lifecycle.Errorf(lifecycle.KindValidation, "invalid JSON body: %v", err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeError(w, lifecycle.Errorf(lifecycle.KindValidation, "invalid request: %v", err))
		return false
	}
	return true
}

// urlUUID parses a uuid path parameter, writing a 400 on failure.
func (h *Handler) urlUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		h.writeError(w, lifecycle.Errorf(lifecycle.KindValidation, "invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// parseUUIDField parses a uuid carried in a JSON body field.
func parseUUIDField(value, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, lifecycle.Errorf(lifecycle.KindValidation, "invalid %s", name)
	}
	return id, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response", zap.Error(err))
	}
}

type errorResponse struct {
	Error string              `json:"error"`
	Kind  lifecycle.ErrorKind `json:"kind,omitempty"`
}

// writeError maps lifecycle error kinds onto HTTP statuses. Untagged errors
// become 500s with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	kind := lifecycle.KindOf(err)
	status := http.StatusInternalServerError
	msg := err.Error()

	switch kind {
	case lifecycle.KindValidation:
		status = http.StatusBadRequest
	case lifecycle.KindNotFound:
		status = http.StatusNotFound
	case lifecycle.KindPhaseLocked, lifecycle.KindTerminalState,
		lifecycle.KindStaleState, lifecycle.KindAwardConflict:
		status = http.StatusConflict
	case lifecycle.KindStateInconsistency:
		status = http.StatusUnprocessableEntity
	default:
		h.log.Error("internal error", zap.Error(err))
		msg = "internal error"
	}
	h.writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}

type paginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams reads limit and offset from the query, with defaults
// and caps.
func parsePaginationParams(r *http.Request) paginationParams {
	params := paginationParams{Limit: 20, Offset: 0}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			params.Limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			params.Offset = o
		}
	}
	return params
}
