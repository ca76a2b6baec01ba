package authors

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bookhaven/bookhaven/internal/auth"
	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

// Handler wires HTTP endpoints for author reporting.
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

// MountRoutes registers author routes. Biography updates need author:write,
// the revenue report is admin-only, everything else needs user:read.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAuth)
		r.With(h.authmw.RequireScopes(auth.ScopeAuthorWrite)).Patch("/update-author-biography", h.handleUpdateBiography)
		r.With(h.authmw.RequireScopes(auth.ScopeAdminWrite)).Get("/revenue", h.handleRevenue)
		r.With(h.authmw.RequireScopes(auth.ScopeUserRead)).Get("/top-three-paid-authors", h.handleTopPaid)
		r.With(h.authmw.RequireScopes(auth.ScopeUserRead)).Get("/authors-with-more-than-nr-books/{nr}", h.handleProlific)
		r.With(h.authmw.RequireScopes(auth.ScopeUserRead)).Get("/authors-with-no-published-books", h.handleIdle)
		r.With(h.authmw.RequireScopes(auth.ScopeUserRead)).Get("/authors-that-sold-a-specified-nr-of-books", h.handleSoldAtLeast)
		r.With(h.authmw.RequireScopes(auth.ScopeUserRead)).Get("/author-books", h.handleBooks)
		r.With(h.authmw.RequireScopes(auth.ScopeUserRead)).Get("/author-unsold-books", h.handleUnsoldBooks)
		r.With(h.authmw.RequireScopes(auth.ScopeUserRead)).Get("/average-book-price", h.handleAveragePrices)
	})
}

type updateBiographyRequest struct {
	Biography string `json:"biography" validate:"required,min=1,max=2000"`
}

func (h *Handler) handleUpdateBiography(w http.ResponseWriter, r *http.Request) {
	var req updateBiographyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "biography must be 1 to 2000 characters")
		return
	}
	authorID, err := auth.ClaimsFromContext(r.Context()).UserID()
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	if err := h.service.UpdateBiography(r.Context(), authorID, req.Biography); err != nil {
		h.logger.Warn("update biography", slog.Int64("author_id", authorID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"success": "Biography saved."})
}

func (h *Handler) handleRevenue(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Revenue(r.Context())
	if err != nil {
		h.logger.Error("author revenue", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []Earnings{}
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleTopPaid(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.TopPaid(r.Context())
	if err != nil {
		h.logger.Error("top paid authors", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []Earnings{}
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleProlific(w http.ResponseWriter, r *http.Request) {
	nr, err := strconv.ParseInt(chi.URLParam(r, "nr"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	result, err := h.service.ProlificAuthors(r.Context(), nr)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []BookCount{}
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleIdle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.IdleAuthors(r.Context())
	if err != nil {
		h.logger.Error("idle authors", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []Author{}
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleSoldAtLeast(w http.ResponseWriter, r *http.Request) {
	nr, err := strconv.ParseInt(r.URL.Query().Get("specified_nr_of_books"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	result, err := h.service.SoldAtLeast(r.Context(), nr)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []SalesCount{}
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleBooks(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Books(r.Context(), r.URL.Query().Get("author"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []AuthorBook{}
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleUnsoldBooks(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.UnsoldBooks(r.Context(), r.URL.Query().Get("author"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []UnsoldBook{}
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleAveragePrices(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.AveragePrices(r.Context())
	if err != nil {
		h.logger.Error("average book price", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []AveragePrice{}
	}
	httpx.JSON(w, http.StatusOK, result)
}
