package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bookhaven/bookhaven/internal/auth"
	"github.com/bookhaven/bookhaven/internal/authors"
	"github.com/bookhaven/bookhaven/internal/books"
	"github.com/bookhaven/bookhaven/internal/orders"
	"github.com/bookhaven/bookhaven/internal/users"
	"github.com/bookhaven/bookhaven/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	AuthHandler    *auth.Handler
	UsersHandler   *users.Handler
	BooksHandler   *books.Handler
	OrdersHandler  *orders.Handler
	AuthorsHandler *authors.Handler
	JobHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router with Bookhaven defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.Route("/user", params.UsersHandler.MountRoutes)
		r.Route("/books", params.BooksHandler.MountRoutes)
		r.Route("/order", params.OrdersHandler.MountRoutes)
		r.Route("/authors", params.AuthorsHandler.MountRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
