package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-lending-service/internal/lending"
	"library-lending-service/internal/models"
	"library-lending-service/internal/postgres"
)

type storeFactory struct {
	name string
	open func(t *testing.T, dsn string) *postgres.Store
}

var factories = []storeFactory{
	{
		name: "pgx",
		open: func(t *testing.T, dsn string) *postgres.Store {
			pool, err := postgres.OpenPGXPool(context.Background(), dsn)
			require.NoError(t, err)
			t.Cleanup(pool.Close)
			store, err := postgres.NewStoreFromPGXPool(pool)
			require.NoError(t, err)
			return store
		},
	},
	{
		name: "sqlx",
		open: func(t *testing.T, dsn string) *postgres.Store {
			db, err := postgres.OpenSQLX(context.Background(), dsn)
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			store, err := postgres.NewStoreFromSQLX(db)
			require.NoError(t, err)
			return store
		},
	},
}

// forEachDriver runs test against a freshly migrated and emptied database
// for each driver. Skipped unless POSTGRES_TEST_DSN is set.
func forEachDriver(t *testing.T, test func(t *testing.T, store *postgres.Store)) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	for _, factory := range factories {
		t.Run(factory.name, func(t *testing.T) {
			store := factory.open(t, dsn)
			require.NoError(t, store.Migrate(context.Background()))
			cleanUp(t, dsn)
			test(t, store)
		})
	}
}

func cleanUp(t *testing.T, dsn string) {
	t.Helper()
	db, err := postgres.OpenSQLX(context.Background(), dsn)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("TRUNCATE loan_records, books RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

func insertBook(t *testing.T, store *postgres.Store, isbn string, copies int) *models.Book {
	t.Helper()
	book := &models.Book{ISBN: isbn, Title: "Title " + isbn, Author: "Author", TotalCopies: copies, AvailableCopies: copies}
	require.NoError(t, store.InsertBook(context.Background(), book))
	return book
}

func Test_Postgres_Books(t *testing.T) {
	forEachDriver(t, func(t *testing.T, store *postgres.Store) {
		first := insertBook(t, store, "9780000000001", 2)
		second := insertBook(t, store, "9780000000002", 1)
		assert.Equal(t, 1, first.ID)
		assert.Equal(t, 2, second.ID)
		assert.False(t, first.CreatedAt.IsZero())

		byISBN, err := store.FindBookByISBN(context.Background(), "9780000000002")
		require.NoError(t, err)
		require.NotNil(t, byISBN)
		assert.Equal(t, second.ID, byISBN.ID)

		missing, err := store.FindBookByID(context.Background(), 99)
		require.NoError(t, err)
		assert.Nil(t, missing)

		books, err := store.ListAllBooks(context.Background())
		require.NoError(t, err)
		assert.Len(t, books, 2)

		err = store.InsertBook(context.Background(), &models.Book{
			ISBN: "9780000000001", Title: "Copy", Author: "Author", TotalCopies: 1, AvailableCopies: 1,
		})
		assert.ErrorIs(t, err, models.ErrDuplicateISBN)
	})
}

func Test_Postgres_AvailabilityStaysInRange(t *testing.T) {
	forEachDriver(t, func(t *testing.T, store *postgres.Store) {
		book := insertBook(t, store, "9780000000001", 1)

		adjust := func(bookID, delta int) error {
			return store.RunInTx(context.Background(), func(tx lending.TxStore) error {
				return tx.AdjustBookAvailability(bookID, delta)
			})
		}

		assert.ErrorIs(t, adjust(book.ID, 1), models.ErrNoCopiesAvailable)
		assert.NoError(t, adjust(book.ID, -1))
		assert.ErrorIs(t, adjust(book.ID, -1), models.ErrNoCopiesAvailable)
		assert.ErrorIs(t, adjust(42, -1), models.ErrBookNotFound)
	})
}

func Test_Postgres_FailedTransactionRollsBack(t *testing.T) {
	forEachDriver(t, func(t *testing.T, store *postgres.Store) {
		book := insertBook(t, store, "9780000000001", 1)
		now := time.Now()

		err := store.RunInTx(context.Background(), func(tx lending.TxStore) error {
			if err := tx.AdjustBookAvailability(book.ID, -1); err != nil {
				return err
			}
			if err := tx.InsertLoanRecord(&models.LoanRecord{
				ID: uuid.NewString(), PatronID: "123456", BookID: book.ID, BookTitle: book.Title,
				BookAuthor: book.Author, Status: models.LoanStatusActive, BorrowedAt: now, DueAt: now,
			}); err != nil {
				return err
			}
			return tx.CloseLoanRecord("123456", 77, now)
		})
		assert.ErrorIs(t, err, models.ErrLoanNotFound)

		stored, err := store.FindBookByID(context.Background(), book.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.AvailableCopies)

		count, err := store.CountActiveLoans(context.Background(), "123456")
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func Test_Postgres_LendingLifecycle(t *testing.T) {
	forEachDriver(t, func(t *testing.T, store *postgres.Store) {
		service := lending.NewService(store)
		added, err := service.AddBook(context.Background(), lending.NewBook{
			Title: "Dune", Author: "Frank Herbert", ISBN: "9780441172719", TotalCopies: 2,
		})
		require.NoError(t, err)

		_, err = service.Borrow(context.Background(), "123456", added.Book.ID)
		require.NoError(t, err)

		loans, err := store.ListActiveLoans(context.Background(), "123456")
		require.NoError(t, err)
		require.Len(t, loans, 1)
		assert.Equal(t, "Dune", loans[0].BookTitle)
		assert.Nil(t, loans[0].ReturnedAt)

		_, err = service.ReturnBook(context.Background(), "123456", added.Book.ID)
		require.NoError(t, err)

		book, err := store.FindBookByID(context.Background(), added.Book.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, book.AvailableCopies)
	})
}

func Test_Postgres_ConcurrentBorrowsOfLastCopy(t *testing.T) {
	forEachDriver(t, func(t *testing.T, store *postgres.Store) {
		service := lending.NewService(store)
		book := insertBook(t, store, "9780000000001", 1)

		patrons := []string{"100001", "100002", "100003", "100004"}
		codes := make([]lending.Code, len(patrons))

		var wg sync.WaitGroup
		for i, patron := range patrons {
			wg.Add(1)
			go func(i int, patron string) {
				defer wg.Done()
				_, err := service.Borrow(context.Background(), patron, book.ID)
				codes[i] = lending.CodeOf(err)
			}(i, patron)
		}
		wg.Wait()

		succeeded := 0
		for _, code := range codes {
			if code == "" {
				succeeded++
			} else {
				assert.Equal(t, lending.CodeUnavailable, code)
			}
		}
		assert.Equal(t, 1, succeeded)

		stored, err := store.FindBookByID(context.Background(), book.ID)
		require.NoError(t, err)
		assert.Zero(t, stored.AvailableCopies)
	})
}
