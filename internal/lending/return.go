package lending

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"library-lending-service/internal/models"
)

// ReturnOutcome is the successful result of ReturnBook. Fee is set only
// when the loan was overdue at the moment of return.
type ReturnOutcome struct {
	Loan    *models.LoanRecord `json:"loan"`
	Fee     *models.FeeResult  `json:"fee,omitempty"`
	Message string             `json:"message"`
}

// ReturnBook closes a patron's active loan of a book and puts the copy back on the shelf
func (s *Service) ReturnBook(ctx context.Context, patronID string, bookID int) (*ReturnOutcome, error) {
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

	loan, err := s.findActiveLoan(ctx, patronID, book.ID)
	if err != nil {
		s.logger.Error("active loan lookup failed", "patron_id", patronID, "error", err)
		return nil, storageError("Database error occurred while loading borrowed books.", err)
	}
	if loan == nil {
		return nil, newError(CodeNotBorrowed, "Patron has no record of borrowing this book.")
	}

	returnedAt := s.now()

	err = s.store.RunInTx(ctx, func(tx TxStore) error {
		if err := tx.AdjustBookAvailability(book.ID, 1); err != nil {
			return err
		}
		return tx.CloseLoanRecord(patronID, book.ID, returnedAt)
	})
	if err != nil {
		// A concurrent return closed the loan first
		if errors.Is(err, models.ErrLoanNotFound) {
			return nil, newError(CodeNotBorrowed, "Patron has no record of borrowing this book.")
		}
		s.logger.Error("return transaction failed", "patron_id", patronID, "book_id", book.ID, "error", err)
		return nil, storageError("Database error occurred while recording the return.", err)
	}

	wasOverdue := loan.IsOverdue(returnedAt)
	loan.Close(returnedAt)

	outcome := &ReturnOutcome{
		Loan:    loan,
		Message: fmt.Sprintf("Successfully returned '%s'. Return date: %s", book.Title, returnedAt.Format(models.DueDateLayout)),
	}

	if wasOverdue {
		fee := ComputeFee(s.policy, loan.DueAt, returnedAt)
		outcome.Fee = &fee
		outcome.Message += fmt.Sprintf("\n\nStatus: %s\nDays Overdue: %d\nLate Fee Amount: %.2f",
			fee.Status.Text(), fee.DaysOverdue, fee.Amount)
	}

	s.logger.Info("book returned", "patron_id", patronID, "book_id", book.ID, "overdue", wasOverdue)

	return outcome, nil
}

// findActiveLoan returns the patron's active loan of bookID, or nil
func (s *Service) findActiveLoan(ctx context.Context, patronID string, bookID int) (*models.LoanRecord, error) {
	loans, err := s.store.ListActiveLoans(ctx, patronID)
	if err != nil {
		return nil, err
	}
	for _, loan := range loans {
		if loan.BookID == bookID {
			return loan, nil
		}
	}
	return nil, nil
}
