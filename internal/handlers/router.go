package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"library-lending-service/internal/lending"
)

// RouterConfig wires the HTTP API
type RouterConfig struct {
	Service *lending.Service
	Logger  Logger

	// RequireStaff guards catalog changes; nil leaves them open
	RequireStaff func(http.Handler) http.Handler

	// RequestLogger is chi's request logger unless replaced
	RequestLogger func(http.Handler) http.Handler
}

// NewRouter builds the chi router with every route of the lending API
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestLogger == nil {
		cfg.RequestLogger = middleware.Logger
	}

	booksHandler := NewBooksHandler(cfg.Service, cfg.Logger)
	loansHandler := NewLoansHandler(cfg.Service, cfg.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cfg.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public catalog
	r.Route("/books", func(r chi.Router) {
		r.Get("/", booksHandler.ListBooks)
		r.Get("/search", booksHandler.SearchBooks)
		r.Get("/{id}", booksHandler.ShowBook)

		// Catalog management (staff only when enabled)
		r.Group(func(r chi.Router) {
			if cfg.RequireStaff != nil {
				r.Use(cfg.RequireStaff)
			}
			r.Post("/", booksHandler.CreateBook)
		})
	})

	r.Route("/patrons/{patronID}", func(r chi.Router) {
		r.Get("/status", loansHandler.Status)
		r.Post("/loans", loansHandler.Borrow)
		r.Post("/loans/{bookID}/return", loansHandler.Return)
		r.Get("/loans/{bookID}/fee", loansHandler.Fee)
	})

	return r
}
