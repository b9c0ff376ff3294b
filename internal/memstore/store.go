// Package memstore keeps the catalog and loan records in process memory.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"library-lending-service/internal/lending"
	"library-lending-service/internal/models"
)

// Store is an in-memory lending.Store guarded by a single mutex
type Store struct {
	mu     sync.RWMutex
	books  map[int]*models.Book
	isbns  map[string]int
	loans  []*models.LoanRecord
	nextID int
	now    func() time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		books:  make(map[int]*models.Book),
		isbns:  make(map[string]int),
		nextID: 1,
		now:    time.Now,
	}
}

// FindBookByID returns a copy of the book, or nil when it does not exist
func (s *Store) FindBookByID(_ context.Context, id int) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return nil, nil
	}
	clone := *book
	return &clone, nil
}

// FindBookByISBN returns a copy of the book with the given ISBN, or nil
func (s *Store) FindBookByISBN(_ context.Context, isbn string) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.isbns[isbn]
	if !ok {
		return nil, nil
	}
	clone := *s.books[id]
	return &clone, nil
}

// ListAllBooks returns copies of all books ordered by ID
func (s *Store) ListAllBooks(_ context.Context) ([]*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]*models.Book, 0, len(s.books))
	for _, book := range s.books {
		clone := *book
		books = append(books, &clone)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

// InsertBook stores the book under the next free ID
func (s *Store) InsertBook(_ context.Context, book *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.isbns[book.ISBN]; taken {
		return models.ErrDuplicateISBN
	}

	now := s.now()
	book.ID = s.nextID
	book.CreatedAt = now
	book.UpdatedAt = now
	s.nextID++

	clone := *book
	s.books[book.ID] = &clone
	s.isbns[book.ISBN] = book.ID
	return nil
}

// CountActiveLoans counts the patron's loans without a return date
func (s *Store) CountActiveLoans(_ context.Context, patronID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, loan := range s.loans {
		if loan.PatronID == patronID && loan.IsActive() {
			count++
		}
	}
	return count, nil
}

// ListActiveLoans returns copies of the patron's active loans in borrow order
func (s *Store) ListActiveLoans(_ context.Context, patronID string) ([]*models.LoanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loans := []*models.LoanRecord{}
	for _, loan := range s.loans {
		if loan.PatronID == patronID && loan.IsActive() {
			clone := *loan
			loans = append(loans, &clone)
		}
	}
	return loans, nil
}

// RunInTx holds the write lock for the whole of fn. Writes are staged on
// copies and applied only when fn returns nil.
func (s *Store) RunInTx(_ context.Context, fn func(tx lending.TxStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, books: make(map[int]*models.Book), closed: make(map[int]time.Time)}
	if err := fn(tx); err != nil {
		return err
	}

	tx.commit()
	return nil
}

// memTx stages writes against the locked store
type memTx struct {
	store    *Store
	books    map[int]*models.Book
	inserted []*models.LoanRecord
	closed   map[int]time.Time // index into store.loans
}

func (tx *memTx) book(id int) (*models.Book, bool) {
	if staged, ok := tx.books[id]; ok {
		return staged, true
	}
	current, ok := tx.store.books[id]
	if !ok {
		return nil, false
	}
	clone := *current
	tx.books[id] = &clone
	return &clone, true
}

func (tx *memTx) AdjustBookAvailability(bookID int, delta int) error {
	book, ok := tx.book(bookID)
	if !ok {
		return models.ErrBookNotFound
	}
	if err := book.AdjustAvailability(delta); err != nil {
		return err
	}
	book.UpdatedAt = tx.store.now()
	return nil
}

func (tx *memTx) InsertLoanRecord(record *models.LoanRecord) error {
	clone := *record
	tx.inserted = append(tx.inserted, &clone)
	return nil
}

func (tx *memTx) CloseLoanRecord(patronID string, bookID int, returnedAt time.Time) error {
	for i, loan := range tx.store.loans {
		if _, done := tx.closed[i]; done {
			continue
		}
		if loan.PatronID == patronID && loan.BookID == bookID && loan.IsActive() {
			tx.closed[i] = returnedAt
			return nil
		}
	}
	return models.ErrLoanNotFound
}

func (tx *memTx) commit() {
	for id, book := range tx.books {
		tx.store.books[id] = book
	}
	for i, returnedAt := range tx.closed {
		closed := *tx.store.loans[i]
		closed.Close(returnedAt)
		tx.store.loans[i] = &closed
	}
	tx.store.loans = append(tx.store.loans, tx.inserted...)
}
