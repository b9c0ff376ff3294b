package lending_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"library-lending-service/internal/lending"
	"library-lending-service/internal/memstore"
	"library-lending-service/internal/models"
)

const patronID = "123456"

type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

type fixture struct {
	store   *memstore.Store
	clock   *testClock
	service *lending.Service
}

func newFixture(t *testing.T, options ...lending.Option) *fixture {
	t.Helper()
	f := &fixture{store: memstore.New(), clock: newTestClock()}
	options = append([]lending.Option{lending.WithClock(f.clock.Now)}, options...)
	f.service = lending.NewService(f.store, options...)
	return f
}

func (f *fixture) givenBook(t *testing.T, copies int) *models.Book {
	t.Helper()
	books, err := f.store.ListAllBooks(context.Background())
	require.NoError(t, err)

	added, err := f.service.AddBook(context.Background(), lending.NewBook{
		Title:       fmt.Sprintf("Book %d", len(books)+1),
		Author:      "Jane Doe",
		ISBN:        fmt.Sprintf("978000000%04d", len(books)+1),
		TotalCopies: copies,
	})
	require.NoError(t, err)
	return added.Book
}

func (f *fixture) givenBorrowed(t *testing.T, patron string, bookID int) *models.LoanRecord {
	t.Helper()
	receipt, err := f.service.Borrow(context.Background(), patron, bookID)
	require.NoError(t, err)
	return receipt.Loan
}

func (f *fixture) availableCopies(t *testing.T, bookID int) int {
	t.Helper()
	book, err := f.store.FindBookByID(context.Background(), bookID)
	require.NoError(t, err)
	require.NotNil(t, book)
	return book.AvailableCopies
}

// mockStore is a testify mock of lending.Store used to inject storage failures
type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindBookByID(ctx context.Context, id int) (*models.Book, error) {
	args := m.Called(ctx, id)
	book, _ := args.Get(0).(*models.Book)
	return book, args.Error(1)
}

func (m *mockStore) FindBookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	args := m.Called(ctx, isbn)
	book, _ := args.Get(0).(*models.Book)
	return book, args.Error(1)
}

func (m *mockStore) ListAllBooks(ctx context.Context) ([]*models.Book, error) {
	args := m.Called(ctx)
	books, _ := args.Get(0).([]*models.Book)
	return books, args.Error(1)
}

func (m *mockStore) InsertBook(ctx context.Context, book *models.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *mockStore) CountActiveLoans(ctx context.Context, patronID string) (int, error) {
	args := m.Called(ctx, patronID)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) ListActiveLoans(ctx context.Context, patronID string) ([]*models.LoanRecord, error) {
	args := m.Called(ctx, patronID)
	loans, _ := args.Get(0).([]*models.LoanRecord)
	return loans, args.Error(1)
}

func (m *mockStore) RunInTx(ctx context.Context, fn func(tx lending.TxStore) error) error {
	return m.Called(ctx, fn).Error(0)
}

// failingTxStore runs transactions against a real store but fails one step
type failingTxStore struct {
	*memstore.Store
	failInsert error
	failClose  error
}

func (s *failingTxStore) RunInTx(ctx context.Context, fn func(tx lending.TxStore) error) error {
	return s.Store.RunInTx(ctx, func(tx lending.TxStore) error {
		return fn(&failingTx{TxStore: tx, store: s})
	})
}

type failingTx struct {
	lending.TxStore
	store *failingTxStore
}

func (tx *failingTx) InsertLoanRecord(record *models.LoanRecord) error {
	if tx.store.failInsert != nil {
		return tx.store.failInsert
	}
	return tx.TxStore.InsertLoanRecord(record)
}

func (tx *failingTx) CloseLoanRecord(patronID string, bookID int, returnedAt time.Time) error {
	if tx.store.failClose != nil {
		return tx.store.failClose
	}
	return tx.TxStore.CloseLoanRecord(patronID, bookID, returnedAt)
}
