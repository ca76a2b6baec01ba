package books

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bookhaven/bookhaven/internal/auth"
	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the catalog.
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

// MountRoutes registers catalog routes. Listing needs user:read; creation
// needs author:write.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAuth)
		r.With(h.authmw.RequireScopes(auth.ScopeUserRead)).Get("/list-all-books", h.handleList)
		r.With(h.authmw.RequireScopes(auth.ScopeUserRead)).Get("/the-most-sold-book", h.handleMostSold)
		r.With(h.authmw.RequireScopes(auth.ScopeAuthorWrite)).Post("/create-book", h.handleCreate)
	})
}

type createBookRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=100"`
	Description string   `json:"description" validate:"required"`
	PublishedOn string   `json:"published_on" validate:"required,datetime=2006-01-02"`
	Price       float64  `json:"price" validate:"gte=0,lte=9999.99"`
	Status      string   `json:"status" validate:"omitempty,oneof=draft published"`
	CoverURLs   []string `json:"cover_urls" validate:"omitempty,dive,url"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		fields := make([]string, 0, 4)
		for _, fieldErr := range err.(validator.ValidationErrors) {
			fields = append(fields, fieldErr.Field())
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fields: "+strings.Join(fields, ", "))
		return
	}
	publishedOn, _ := time.Parse("2006-01-02", req.PublishedOn)

	claims := auth.ClaimsFromContext(r.Context())
	authorID, err := claims.UserID()
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	book, err := h.service.Create(r.Context(), authorID, Book{
		Title:       req.Title,
		Description: req.Description,
		PublishedOn: publishedOn,
		Price:       req.Price,
		Status:      req.Status,
		CoverURLs:   req.CoverURLs,
	})
	if err != nil {
		h.logger.Warn("create book", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, book)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filters, err := parseListFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list books", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []Book{}
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleMostSold(w http.ResponseWriter, r *http.Request) {
	best, err := h.service.MostSold(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, best)
}

func parseListFilters(r *http.Request) (ListFilters, error) {
	q := r.URL.Query()
	filters := ListFilters{
		Title:       q.Get("title"),
		Description: q.Get("description"),
		AuthorName:  q.Get("author"),
		Status:      q.Get("status"),
		OrderBy:     q.Get("order_by"),
		Descending:  q.Get("dir") == "desc",
	}
	if v := q.Get("min_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ListFilters{}, httpx.ErrValidation
		}
		filters.MinPrice = &price
	}
	if v := q.Get("max_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ListFilters{}, httpx.ErrValidation
		}
		filters.MaxPrice = &price
	}
	if v := q.Get("published_after"); v != "" {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			return ListFilters{}, httpx.ErrValidation
		}
		filters.PublishedAfter = &date
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return ListFilters{}, httpx.ErrValidation
		}
		filters.Offset = offset
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 100 {
			return ListFilters{}, httpx.ErrValidation
		}
		filters.Limit = limit
	}
	return filters, nil
}
