package lending

import (
	"context"
	"time"

	"library-lending-service/internal/models"
)

// Store is the data access collaborator of the lending engine.
//
// Lookups return (nil, nil) when the book does not exist. InsertBook
// assigns the new book's ID and returns models.ErrDuplicateISBN when the
// ISBN is taken.
type Store interface {
	FindBookByID(ctx context.Context, id int) (*models.Book, error)
	FindBookByISBN(ctx context.Context, isbn string) (*models.Book, error)
	ListAllBooks(ctx context.Context) ([]*models.Book, error)
	InsertBook(ctx context.Context, book *models.Book) error
	CountActiveLoans(ctx context.Context, patronID string) (int, error)
	ListActiveLoans(ctx context.Context, patronID string) ([]*models.LoanRecord, error)

	// RunInTx applies every write issued through tx atomically: either
	// all of them become visible or none does.
	RunInTx(ctx context.Context, fn func(tx TxStore) error) error
}

// TxStore is the set of writes that must happen inside one transaction.
//
// AdjustBookAvailability returns models.ErrNoCopiesAvailable when the
// new count would leave [0, total] and models.ErrBookNotFound for an
// unknown book. CloseLoanRecord returns models.ErrLoanNotFound when the
// patron has no active loan for the book.
type TxStore interface {
	AdjustBookAvailability(bookID int, delta int) error
	InsertLoanRecord(record *models.LoanRecord) error
	CloseLoanRecord(patronID string, bookID int, returnedAt time.Time) error
}
