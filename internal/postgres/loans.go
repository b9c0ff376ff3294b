package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"library-lending-service/internal/models"
)

func activeLoansOf(patronID string) goqu.Ex {
	return goqu.Ex{colPatronID: patronID, colReturnedAt: nil}
}

// CountActiveLoans counts the patron's loans without a return date
func (s *Store) CountActiveLoans(ctx context.Context, patronID string) (int, error) {
	stmt := builder().
		From(tableLoans).
		Select(goqu.COUNT(goqu.Star())).
		Where(activeLoansOf(patronID))

	query, err := s.toSQL(stmt)
	if err != nil {
		return 0, err
	}

	rows, err := s.query(ctx, s.db, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count active loans: %w", err)
	}
	defer s.closeRows(rows)

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, fmt.Errorf("failed to scan loan count: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to count active loans: %w", err)
	}

	return count, nil
}

// ListActiveLoans returns the patron's active loans in borrow order
func (s *Store) ListActiveLoans(ctx context.Context, patronID string) ([]*models.LoanRecord, error) {
	stmt := builder().
		From(tableLoans).
		Select(colID, colPatronID, colBookID, colBookTitle, colBookAuthor,
			colStatus, colBorrowedAt, colDueAt, colReturnedAt).
		Where(activeLoansOf(patronID)).
		Order(goqu.I(colBorrowedAt).Asc(), goqu.I(colID).Asc())

	query, err := s.toSQL(stmt)
	if err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, s.db, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active loans: %w", err)
	}
	defer s.closeRows(rows)

	loans := []*models.LoanRecord{}
	for rows.Next() {
		var loan models.LoanRecord
		var status string
		err := rows.Scan(&loan.ID, &loan.PatronID, &loan.BookID, &loan.BookTitle, &loan.BookAuthor,
			&status, &loan.BorrowedAt, &loan.DueAt, &loan.ReturnedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loan.Status = models.LoanStatus(status)
		loans = append(loans, &loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read active loans: %w", err)
	}

	return loans, nil
}
