package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"library-lending-service/internal/lending"
	"library-lending-service/internal/models"
)

// LoansHandler serves the patron endpoints: borrow, return, fee and status
type LoansHandler struct {
	service *lending.Service
	logger  Logger
}

// NewLoansHandler creates a patron handler
func NewLoansHandler(service *lending.Service, logger Logger) *LoansHandler {
	if logger == nil {
		logger = nopLogger{}
	}
	return &LoansHandler{service: service, logger: logger}
}

// BorrowRequest is the body of POST /patrons/{patronID}/loans
type BorrowRequest struct {
	BookID int `json:"book_id"`
}

// FeeResponse is a fee result with its display text
type FeeResponse struct {
	models.FeeResult
	Message string `json:"message"`
}

// Borrow lends a book to the patron (POST /patrons/{patronID}/loans)
func (h *LoansHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	var req BorrowRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.service.Borrow(r.Context(), chi.URLParam(r, "patronID"), req.BookID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// Return closes the patron's loan of the book (POST /patrons/{patronID}/loans/{bookID}/return)
func (h *LoansHandler) Return(w http.ResponseWriter, r *http.Request) {
	bookID, ok := bookIDParam(w, r, "bookID")
	if !ok {
		return
	}

	outcome, err := h.service.ReturnBook(r.Context(), chi.URLParam(r, "patronID"), bookID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// Fee reports the current late fee of a loan (GET /patrons/{patronID}/loans/{bookID}/fee).
// Invalid input answers 400 and a missing loan 404, both with the fee body.
func (h *LoansHandler) Fee(w http.ResponseWriter, r *http.Request) {
	bookID, ok := bookIDParam(w, r, "bookID")
	if !ok {
		return
	}

	fee, err := h.service.CalculateFee(r.Context(), chi.URLParam(r, "patronID"), bookID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	switch fee.Status {
	case models.FeeStatusInvalidInput:
		status = http.StatusBadRequest
	case models.FeeStatusNoSuchLoan:
		status = http.StatusNotFound
	}
	writeJSON(w, status, FeeResponse{FeeResult: fee, Message: fee.Status.Text()})
}

// Status reports the patron's loans and owed fees (GET /patrons/{patronID}/status)
func (h *LoansHandler) Status(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.PatronStatus(r.Context(), chi.URLParam(r, "patronID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if report.IsEmpty() {
		writeErrorCode(w, http.StatusBadRequest, string(lending.CodeInvalidPatronID),
			"Invalid patron ID. Must be exactly 6 digits.")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
