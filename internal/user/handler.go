// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/carterperez-dev/emoji-explainer/internal/core"
	"github.com/carterperez-dev/emoji-explainer/internal/middleware"
)

const (
	msgInvalidTokenFormat = "Invalid authorization token format."
	msgInvalidToken       = "Invalid or expired token."
	msgUserNotFound       = "No user found with the given credentials."
	msgUserDeleted        = "User deleted successfully."
	msgUserUpdated        = "User updated successfully."
	msgBlankUsername      = "Username must not be blank."
	msgEmailTaken         = "Email is already in use by another account."
	msgUsernameTaken      = "Username is already in use by another account."
	msgStoreUnavailable   = "Storage is temporarily unavailable, please try again later."
	msgInternal           = "There was an internal error, please try again later."
)

type Handler struct {
	service   *Service
	verifier  middleware.TokenVerifier
	validator *validator.Validate
}

func NewHandler(service *Service, verifier middleware.TokenVerifier) *Handler {
	return &Handler{
		service:   service,
		verifier:  verifier,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts the account endpoints on a router already scoped
// to /users. Update and delete resolve the bearer token themselves so that
// every outcome is reported in a 200 result body.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.With(authenticator).Get("/details", h.GetDetails)
	r.Patch("/update", h.Update)
	r.Delete("/delete", h.Delete)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/users", h.ListUsers)
	r.Put("/users/{userID}/role", h.UpdateUserRole)
}

func (h *Handler) GetDetails(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	details, err := h.service.GetDetails(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		case errors.Is(err, core.ErrUnauthorized):
			core.Unauthorized(w, "")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, details)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	claims, failure := h.identify(r)
	if failure != nil {
		core.OK(w, failure)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.OK(w, ResultResponse{Message: "invalid request body", Code: core.CodeBadRequest})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.OK(w, ResultResponse{
			Message: core.FormatValidationError(err),
			Code:    core.CodeValidation,
		})
		return
	}

	if _, err := h.service.Update(r.Context(), claims.UserID, req); err != nil {
		core.OK(w, failureResult(err))
		return
	}

	core.OK(w, ResultResponse{Success: true, Message: msgUserUpdated, Code: core.CodeOK})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, failure := h.identify(r)
	if failure != nil {
		core.OK(w, failure)
		return
	}

	if err := h.service.Delete(r.Context(), claims.UserID); err != nil {
		core.OK(w, failureResult(err))
		return
	}

	core.OK(w, ResultResponse{Success: true, Message: msgUserDeleted, Code: core.CodeOK})
}

func (h *Handler) identify(
	r *http.Request,
) (*middleware.AccessTokenClaims, *ResultResponse) {
	token := middleware.ExtractToken(r)
	if token == "" {
		return nil, &ResultResponse{
			Message: msgInvalidTokenFormat,
			Code:    core.CodeInvalidToken,
		}
	}

	claims, err := h.verifier.VerifyAccessToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, core.ErrStoreUnavailable) {
			res := failureResult(err)
			return nil, &res
		}
		return nil, &ResultResponse{
			Message: msgInvalidToken,
			Code:    core.ErrorCode(err),
		}
	}

	return claims, nil
}

func failureResult(err error) ResultResponse {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return ResultResponse{Message: msgEmailTaken, Code: core.CodeEmailTaken}
	case errors.Is(err, ErrUsernameTaken):
		return ResultResponse{Message: msgUsernameTaken, Code: core.CodeUsernameTaken}
	case errors.Is(err, core.ErrNotFound):
		return ResultResponse{Message: msgUserNotFound, Code: core.CodeNotFound}
	case errors.Is(err, core.ErrInvalidInput):
		return ResultResponse{Message: msgBlankUsername, Code: core.CodeValidation}
	case errors.Is(err, core.ErrStoreUnavailable):
		slog.Warn("store unavailable", "error", err)
		return ResultResponse{Message: msgStoreUnavailable, Code: core.CodeStoreUnavailable}
	default:
		slog.Error("user operation failed", "error", err)
		return ResultResponse{Message: msgInternal, Code: core.CodeInternal}
	}
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
	}
	params.Normalize()

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		core.NotFound(w, "user")
		return
	}

	var req UpdateUserRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.FormatValidationError(err)))
		return
	}

	user, err := h.service.UpdateUserRole(r.Context(), userID.String(), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		case errors.Is(err, core.ErrInvalidInput):
			core.JSONError(w, core.ValidationError("invalid role"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToUserResponse(user))
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
