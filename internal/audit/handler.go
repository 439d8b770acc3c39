// AngelaMos | 2026
// handler.go

package audit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/emoji-explainer/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/error", h.ReportError)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/logs", h.ListLogs)
}

func (h *Handler) ReportError(w http.ResponseWriter, r *http.Request) {
	var report ErrorReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	report.UserRole = strings.ToUpper(report.UserRole)
	if err := h.validator.Struct(report); err != nil {
		core.JSONError(w, core.ValidationError(core.FormatValidationError(err)))
		return
	}

	resp, err := h.service.HandleError(r.Context(), report)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	params := ListLogsParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 50),
		Level:    Level(strings.ToUpper(r.URL.Query().Get("level"))),
	}
	params.Normalize()

	if params.Level != "" && !params.Level.Valid() {
		core.JSONError(w, core.ValidationError("level must be one of: INFO WARNING ERROR"))
		return
	}

	entries, total, err := h.service.ListLogs(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, entries, params.Page, params.PageSize, total)
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
