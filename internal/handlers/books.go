package handlers

import (
	"net/http"

	"library-lending-service/internal/lending"
)

// BooksHandler serves the catalog endpoints
type BooksHandler struct {
	service *lending.Service
	logger  Logger
}

// NewBooksHandler creates a catalog handler
func NewBooksHandler(service *lending.Service, logger Logger) *BooksHandler {
	if logger == nil {
		logger = nopLogger{}
	}
	return &BooksHandler{service: service, logger: logger}
}

// ListBooks returns the whole catalog (GET /books)
func (h *BooksHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// SearchBooks filters the catalog (GET /books/search?q=&type=title|author|isbn).
// The type defaults to title.
func (h *BooksHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	searchType := lending.SearchType(query.Get("type"))
	if searchType == "" {
		searchType = lending.SearchByTitle
	}

	books, err := h.service.SearchBooks(r.Context(), query.Get("q"), searchType)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// ShowBook returns one book (GET /books/{id})
func (h *BooksHandler) ShowBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := bookIDParam(w, r, "id")
	if !ok {
		return
	}

	book, err := h.service.GetBook(r.Context(), bookID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// CreateBook adds a book to the catalog (POST /books)
func (h *BooksHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var input lending.NewBook
	if !decodeBody(w, r, &input) {
		return
	}

	added, err := h.service.AddBook(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}
