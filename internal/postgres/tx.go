package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"library-lending-service/internal/lending"
	"library-lending-service/internal/models"
	"library-lending-service/internal/postgres/internal/adapters"
)

// RunInTx runs fn in one SQL transaction and commits only when fn succeeds
func (s *Store) RunInTx(ctx context.Context, fn func(tx lending.TxStore) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&pgTx{store: s, tx: tx, ctx: ctx}); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			s.logError(logMsgRollbackError, logAttrError, rollbackErr.Error())
		}
		s.logDebug(logMsgRollback)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type pgTx struct {
	store *Store
	tx    adapters.DBTx
	ctx   context.Context
}

// AdjustBookAvailability applies delta with a conditional UPDATE, so the
// check and the write cannot be separated by a concurrent transaction
func (t *pgTx) AdjustBookAvailability(bookID int, delta int) error {
	stmt := builder().
		Update(tableBooks).
		Set(goqu.Record{
			colAvailableCopies: goqu.L("? + ?", goqu.I(colAvailableCopies), delta),
			colUpdatedAt:       goqu.L("now()"),
		}).
		Where(
			goqu.C(colID).Eq(bookID),
			goqu.L("? + ? BETWEEN 0 AND ?", goqu.I(colAvailableCopies), delta, goqu.I(colTotalCopies)),
		)

	query, err := t.store.toSQL(stmt)
	if err != nil {
		return err
	}

	affected, err := t.store.exec(t.ctx, t.tx, query)
	if err != nil {
		return fmt.Errorf("failed to update availability of book %d: %w", bookID, err)
	}
	if affected == 1 {
		return nil
	}

	book, err := t.store.selectOneBook(t.ctx, t.tx, goqu.C(colID).Eq(bookID))
	if err != nil {
		return err
	}
	if book == nil {
		return models.ErrBookNotFound
	}
	return models.ErrNoCopiesAvailable
}

func (t *pgTx) InsertLoanRecord(record *models.LoanRecord) error {
	stmt := builder().
		Insert(tableLoans).
		Rows(goqu.Record{
			colID:         record.ID,
			colPatronID:   record.PatronID,
			colBookID:     record.BookID,
			colBookTitle:  record.BookTitle,
			colBookAuthor: record.BookAuthor,
			colStatus:     string(record.Status),
			colBorrowedAt: record.BorrowedAt,
			colDueAt:      record.DueAt,
		})

	query, err := t.store.toSQL(stmt)
	if err != nil {
		return err
	}

	if _, err := t.store.exec(t.ctx, t.tx, query); err != nil {
		return fmt.Errorf("failed to insert loan record: %w", err)
	}
	return nil
}

// CloseLoanRecord closes the oldest active loan of the book by the patron.
// The row is locked by the subquery.
func (t *pgTx) CloseLoanRecord(patronID string, bookID int, returnedAt time.Time) error {
	oldestActive := builder().
		From(tableLoans).
		Select(colID).
		Where(activeLoansOf(patronID), goqu.C(colBookID).Eq(bookID)).
		Order(goqu.I(colBorrowedAt).Asc()).
		Limit(1).
		ForUpdate(exp.Wait)

	stmt := builder().
		Update(tableLoans).
		Set(goqu.Record{
			colStatus:     string(models.LoanStatusReturned),
			colReturnedAt: returnedAt,
		}).
		Where(goqu.C(colID).Eq(oldestActive))

	query, err := t.store.toSQL(stmt)
	if err != nil {
		return err
	}

	affected, err := t.store.exec(t.ctx, t.tx, query)
	if err != nil {
		return fmt.Errorf("failed to close loan record: %w", err)
	}
	if affected == 0 {
		return models.ErrLoanNotFound
	}
	return nil
}
