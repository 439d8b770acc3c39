// AngelaMos | 2026
// handler.go

package emoji

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/emoji-explainer/internal/audit"
	"github.com/carterperez-dev/emoji-explainer/internal/core"
	"github.com/carterperez-dev/emoji-explainer/internal/middleware"
)

const moduleName = "EmojiModule"

// ErrorReporter records an unexpected failure and returns what the client
// should see.
type ErrorReporter interface {
	HandleError(ctx context.Context, report audit.ErrorReport) (*audit.ErrorResponse, error)
}

type Handler struct {
	service   *Service
	reporter  ErrorReporter
	validator *validator.Validate
	now       func() time.Time
}

func NewHandler(service *Service, reporter ErrorReporter) *Handler {
	return &Handler{
		service:   service,
		reporter:  reporter,
		validator: core.NewValidator(),
		now:       time.Now,
	}
}

// RegisterRoutes mounts the lookup routes. Callers wrap r with
// middleware.OptionalAuth so an authenticated caller becomes the owner.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/emoji/interpret", h.Interpret)
	r.Post("/explain", h.Explain)
}

func (h *Handler) Interpret(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	interpretation, err := h.service.Interpret(r.Context(), req.Emoji)
	if err != nil {
		h.fail(w, r, err, req.Emoji)
		return
	}

	core.OK(w, InterpretResponse{Interpretation: interpretation})
}

func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	explanation, err := h.service.ExplainAndCache(
		r.Context(),
		req.Emoji,
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		h.fail(w, r, err, req.Emoji)
		return
	}

	core.OK(w, ExplainResponse{Explanation: explanation})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (EmojiRequest, bool) {
	var req EmojiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return req, false
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.FormatValidationError(err)))
		return req, false
	}

	return req, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, emoji string) {
	if errors.Is(err, core.ErrInvalidInput) {
		core.JSONError(w, core.ValidationError("emoji must not be blank"))
		return
	}

	role := middleware.GetUserRole(r.Context())
	if role == "" {
		role = middleware.RoleUnknown
	}

	// A failed report is logged by the reporter; the client still gets resp.
	resp, _ := h.reporter.HandleError(r.Context(), audit.ErrorReport{
		Module:         moduleName,
		Timestamp:      h.now(),
		ErrorMessage:   err.Error(),
		UserRole:       role,
		AdditionalInfo: map[string]string{"emoji": emoji, "path": r.URL.Path},
	})
	if resp == nil {
		core.InternalServerError(w, err)
		return
	}

	status := http.StatusInternalServerError
	if errors.Is(err, core.ErrStoreUnavailable) {
		status = http.StatusServiceUnavailable
	}

	core.JSON(w, status, resp)
}
