package lending

import (
	"context"
	"math"

	"library-lending-service/internal/models"
)

// PatronStatus reports a patron's active loans and the late fees they
// currently owe. An invalid patron ID yields the empty report and no
// error.
//
// The borrowing history equals the list of currently borrowed books;
// returned loans are not reported.
func (s *Service) PatronStatus(ctx context.Context, patronID string) (models.PatronStatusReport, error) {
	if !s.policy.validPatronID(patronID) {
		return models.PatronStatusReport{}, nil
	}

	loans, err := s.store.ListActiveLoans(ctx, patronID)
	if err != nil {
		s.logger.Error("active loan lookup failed", "patron_id", patronID, "error", err)
		return models.PatronStatusReport{}, storageError("Database error occurred while loading borrowed books.", err)
	}

	count, err := s.store.CountActiveLoans(ctx, patronID)
	if err != nil {
		s.logger.Error("active loan count failed", "patron_id", patronID, "error", err)
		return models.PatronStatusReport{}, storageError("Database error occurred while checking borrowed books.", err)
	}

	now := s.now()
	total := 0.0
	borrowed := make([]models.BorrowedBook, 0, len(loans))

	for _, loan := range loans {
		total += ComputeFee(s.policy, loan.DueAt, now).Amount
		borrowed = append(borrowed, models.BorrowedBook{
			BookID:    loan.BookID,
			Title:     loan.BookTitle,
			Author:    loan.BookAuthor,
			DueDate:   loan.DueAt.Format(models.DueDateLayout),
			IsOverdue: loan.IsOverdue(now),
		})
	}

	history := make([]models.BorrowedBook, len(borrowed))
	copy(history, borrowed)

	return models.PatronStatusReport{
		PatronID:           patronID,
		CurrentlyBorrowed:  borrowed,
		TotalLateFees:      roundCents(total),
		BooksBorrowedCount: count,
		BorrowingHistory:   history,
	}, nil
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
