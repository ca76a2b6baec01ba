package users

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bookhaven/bookhaven/internal/auth"
	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

// Handler wires HTTP endpoints for user self-service.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authmw    auth.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authmw auth.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		authmw:    authmw,
		validator: validator.New(),
	}
}

// MountRoutes registers the self-service routes. Every route requires a
// valid bearer token with the user:read scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAuth)
		r.Use(h.authmw.RequireScopes(auth.ScopeUserRead))

		r.Get("/me", h.handleMe)
		r.Patch("/update-password", h.handleUpdatePassword)
		r.Patch("/deactivate-account", h.handleDeactivate)
		r.Patch("/reactivate-account", h.handleReactivate)
		r.Patch("/update-email", h.handleUpdateEmail)
		r.Patch("/update-name", h.handleUpdateName)
		r.Patch("/upload-photo", h.handleUploadPhoto)
		r.Post("/remove-account", h.handleRemove)
		r.Patch("/update-user-balance", h.handleUpdateBalance)
	})
}

type userResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	IsActive bool    `json:"is_active"`
	Balance  float64 `json:"balance"`
	Bio      string  `json:"bio,omitempty"`
	PhotoURL string  `json:"photo_url,omitempty"`
}

type updatePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type updateEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=150"`
}

type updateNameRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type uploadPhotoRequest struct {
	PhotoURL string `json:"photo_url" validate:"required,url,max=200"`
}

type updateBalanceRequest struct {
	Balance float64 `json:"balance" validate:"gte=0"`
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), auth.ClaimsFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(user))
}

func (h *Handler) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.UpdatePassword(r.Context(), auth.ClaimsFromContext(r.Context()), req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "password updated, sign in again"})
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), auth.ClaimsFromContext(r.Context())); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "account deactivated"})
}

func (h *Handler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reactivate(r.Context(), auth.ClaimsFromContext(r.Context())); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "account reactivated"})
}

func (h *Handler) handleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	var req updateEmailRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.UpdateEmail(r.Context(), auth.ClaimsFromContext(r.Context()), req.Email); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "email updated"})
}

func (h *Handler) handleUpdateName(w http.ResponseWriter, r *http.Request) {
	var req updateNameRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.UpdateName(r.Context(), auth.ClaimsFromContext(r.Context()), req.Name); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "name updated"})
}

func (h *Handler) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	var req uploadPhotoRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.UpdatePhoto(r.Context(), auth.ClaimsFromContext(r.Context()), req.PhotoURL); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"photo_url": req.PhotoURL})
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), auth.ClaimsFromContext(r.Context())); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "account removed"})
}

func (h *Handler) handleUpdateBalance(w http.ResponseWriter, r *http.Request) {
	var req updateBalanceRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.service.UpdateBalance(r.Context(), auth.ClaimsFromContext(r.Context()), req.Balance)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(user))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := httpx.DecodeJSON(r, req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		fields := make([]string, 0, 4)
		for _, fieldErr := range err.(validator.ValidationErrors) {
			fields = append(fields, fieldErr.Field())
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fields: "+strings.Join(fields, ", "))
		return false
	}
	return true
}

func toResponse(u *User) userResponse {
	return userResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
		Balance:  u.Balance,
		Bio:      u.Bio,
		PhotoURL: u.PhotoURL,
	}
}
