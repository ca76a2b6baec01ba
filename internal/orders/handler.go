package orders

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bookhaven/bookhaven/internal/auth"
	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

// Handler wires HTTP endpoints for orders.
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

// MountRoutes registers order routes. The spend report is admin-only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAuth)
		r.With(h.authmw.RequireScopes(auth.ScopeUserRead)).Post("/place-order", h.handlePlace)
		r.With(h.authmw.RequireScopes(auth.ScopeUserRead)).Get("/history", h.handleHistory)
		r.With(h.authmw.RequireScopes(auth.ScopeAdminWrite)).Get("/top-spent", h.handleTopSpenders)
	})
}

type placeOrderRequest struct {
	Items []LineInput `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order payload")
		return
	}
	userID, err := auth.ClaimsFromContext(r.Context()).UserID()
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	order, err := h.service.Place(r.Context(), userID, req.Items)
	if err != nil {
		h.logger.Warn("place order", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.ClaimsFromContext(r.Context()).UserID()
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	history, err := h.service.History(r.Context(), userID)
	if err != nil {
		h.logger.Error("order history", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if history == nil {
		history = []Order{}
	}
	httpx.JSON(w, http.StatusOK, history)
}

func (h *Handler) handleTopSpenders(w http.ResponseWriter, r *http.Request) {
	amount := 0.0
	if v := r.URL.Query().Get("amount"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			httpx.RespondError(w, httpx.ErrValidation)
			return
		}
		amount = parsed
	}
	spenders, err := h.service.TopSpenders(r.Context(), amount)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if spenders == nil {
		spenders = []Spender{}
	}
	httpx.JSON(w, http.StatusOK, spenders)
}
