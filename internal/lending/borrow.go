package lending

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"library-lending-service/internal/models"
)

// BorrowReceipt is the successful result of Borrow
type BorrowReceipt struct {
	Loan    *models.LoanRecord `json:"loan"`
	Message string             `json:"message"`
}

// Borrow lends one copy of a book to a patron.
//
// Checks, in order: patron ID format, book existence, availability and
// the borrowing limit. The loan record insert and the availability
// decrement are committed in one store transaction.
func (s *Service) Borrow(ctx context.Context, patronID string, bookID int) (*BorrowReceipt, error) {
	if !s.policy.validPatronID(patronID) {
		return nil, newError(CodeInvalidPatronID, "Invalid patron ID. Must be exactly 6 digits.")
	}

	book, err := s.store.FindBookByID(ctx, bookID)
	if err != nil {
		s.logger.Error("book lookup failed", "book_id", bookID, "error", err)
		return nil, storageError("Database error occurred while loading the book.", err)
	}
	if book == nil {
		return nil, newError(CodeBookNotFound, "Book not found.")
	}

	if !book.IsAvailable() {
		return nil, newError(CodeUnavailable, "This book is currently not available.")
	}

	activeLoans, err := s.store.CountActiveLoans(ctx, patronID)
	if err != nil {
		s.logger.Error("active loan count failed", "patron_id", patronID, "error", err)
		return nil, storageError("Database error occurred while checking borrowed books.", err)
	}
	if s.policy.limitReached(activeLoans) {
		return nil, newError(CodeLimitReached,
			fmt.Sprintf("You have reached the maximum borrowing limit of %d books.", s.policy.BorrowLimit))
	}

	borrowedAt := s.now()
	loan := &models.LoanRecord{
		ID:         uuid.NewString(),
		PatronID:   patronID,
		BookID:     book.ID,
		BookTitle:  book.Title,
		BookAuthor: book.Author,
		Status:     models.LoanStatusActive,
		BorrowedAt: borrowedAt,
		DueAt:      borrowedAt.Add(s.policy.LoanPeriod),
	}

	err = s.store.RunInTx(ctx, func(tx TxStore) error {
		if err := tx.AdjustBookAvailability(book.ID, -1); err != nil {
			return err
		}
		return tx.InsertLoanRecord(loan)
	})
	if err != nil {
		// The last copy went to a concurrent borrower
		if errors.Is(err, models.ErrNoCopiesAvailable) {
			return nil, newError(CodeUnavailable, "This book is currently not available.")
		}
		s.logger.Error("borrow transaction failed", "patron_id", patronID, "book_id", book.ID, "error", err)
		return nil, storageError("Database error occurred while creating borrow record.", err)
	}

	s.logger.Info("book borrowed", "patron_id", patronID, "book_id", book.ID, "due_at", loan.DueAt)

	return &BorrowReceipt{
		Loan:    loan,
		Message: fmt.Sprintf(`Successfully borrowed "%s". Due date: %s.`, book.Title, loan.DueAt.Format(models.DueDateLayout)),
	}, nil
}
