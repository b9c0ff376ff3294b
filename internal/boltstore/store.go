// Package boltstore keeps the catalog and loan records in a single BoltDB file.
package boltstore

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"
	"time"

	bolt "github.com/boltdb/bolt"
	jsoniter "github.com/json-iterator/go"

	"library-lending-service/internal/lending"
	"library-lending-service/internal/models"
)

var (
	booksBucket  = []byte("books")
	isbnBucket   = []byte("books_by_isbn")
	loansBucket  = []byte("loans")
	metaBucket   = []byte("meta")
	schemaKey    = []byte("schema_version")
	schemaLatest = []byte("1")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store is a lending.Store on BoltDB. Bolt allows a single writer, so
// RunInTx maps directly onto one read-write bolt transaction.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// New opens (or creates) the database at path and ensures all buckets exist
func New(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{booksBucket, isbnBucket, loansBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return tx.Bucket(metaBucket).Put(schemaKey, schemaLatest)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database file lock
func (s *Store) Close() error {
	return s.db.Close()
}

func itob(id int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func getBook(tx *bolt.Tx, id int) (*models.Book, error) {
	v := tx.Bucket(booksBucket).Get(itob(id))
	if v == nil {
		return nil, nil
	}
	var book models.Book
	if err := json.Unmarshal(v, &book); err != nil {
		return nil, fmt.Errorf("failed to decode book %d: %w", id, err)
	}
	return &book, nil
}

func putBook(tx *bolt.Tx, book *models.Book) error {
	data, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return tx.Bucket(booksBucket).Put(itob(book.ID), data)
}

// FindBookByID returns the book, or nil when it does not exist
func (s *Store) FindBookByID(_ context.Context, id int) (*models.Book, error) {
	if id < 1 {
		return nil, nil
	}

	var book *models.Book
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		book, err = getBook(tx, id)
		return err
	})
	return book, err
}

// FindBookByISBN resolves the ISBN through the books_by_isbn index
func (s *Store) FindBookByISBN(_ context.Context, isbn string) (*models.Book, error) {
	var book *models.Book
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(isbnBucket).Get([]byte(isbn))
		if v == nil {
			return nil
		}
		var err error
		book, err = getBook(tx, int(binary.BigEndian.Uint64(v)))
		return err
	})
	return book, err
}

// ListAllBooks returns every book ordered by ID
func (s *Store) ListAllBooks(_ context.Context) ([]*models.Book, error) {
	books := []*models.Book{}

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(booksBucket).ForEach(func(k, v []byte) error {
			var book models.Book
			if err := json.Unmarshal(v, &book); err != nil {
				return fmt.Errorf("failed to decode book: %w", err)
			}
			books = append(books, &book)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return books, nil
}

// InsertBook stores the book under the next bucket sequence number
func (s *Store) InsertBook(_ context.Context, book *models.Book) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		isbns := tx.Bucket(isbnBucket)
		if isbns.Get([]byte(book.ISBN)) != nil {
			return models.ErrDuplicateISBN
		}

		seq, err := tx.Bucket(booksBucket).NextSequence()
		if err != nil {
			return err
		}

		now := s.now()
		book.ID = int(seq)
		book.CreatedAt = now
		book.UpdatedAt = now

		if err := putBook(tx, book); err != nil {
			return err
		}
		return isbns.Put([]byte(book.ISBN), itob(book.ID))
	})
}

func forEachActiveLoan(tx *bolt.Tx, patronID string, fn func(k []byte, loan *models.LoanRecord) error) error {
	return tx.Bucket(loansBucket).ForEach(func(k, v []byte) error {
		var loan models.LoanRecord
		if err := json.Unmarshal(v, &loan); err != nil {
			return fmt.Errorf("failed to decode loan: %w", err)
		}
		if loan.PatronID != patronID || !loan.IsActive() {
			return nil
		}
		return fn(k, &loan)
	})
}

// CountActiveLoans counts the patron's loans without a return date
func (s *Store) CountActiveLoans(_ context.Context, patronID string) (int, error) {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		return forEachActiveLoan(tx, patronID, func([]byte, *models.LoanRecord) error {
			count++
			return nil
		})
	})
	return count, err
}

// ListActiveLoans returns the patron's active loans in borrow order
func (s *Store) ListActiveLoans(_ context.Context, patronID string) ([]*models.LoanRecord, error) {
	loans := []*models.LoanRecord{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return forEachActiveLoan(tx, patronID, func(_ []byte, loan *models.LoanRecord) error {
			loans = append(loans, loan)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(loans, func(i, j int) bool {
		return loans[i].BorrowedAt.Before(loans[j].BorrowedAt)
	})
	return loans, nil
}

// RunInTx runs fn inside one read-write bolt transaction. Bolt rolls the
// transaction back when fn returns an error.
func (s *Store) RunInTx(_ context.Context, fn func(tx lending.TxStore) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx, now: s.now})
	})
}

type boltTx struct {
	tx  *bolt.Tx
	now func() time.Time
}

func (t *boltTx) AdjustBookAvailability(bookID int, delta int) error {
	book, err := getBook(t.tx, bookID)
	if err != nil {
		return err
	}
	if book == nil {
		return models.ErrBookNotFound
	}
	if err := book.AdjustAvailability(delta); err != nil {
		return err
	}
	book.UpdatedAt = t.now()
	return putBook(t.tx, book)
}

func (t *boltTx) InsertLoanRecord(record *models.LoanRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return t.tx.Bucket(loansBucket).Put([]byte(record.ID), data)
}

func (t *boltTx) CloseLoanRecord(patronID string, bookID int, returnedAt time.Time) error {
	var key []byte
	var found *models.LoanRecord

	err := forEachActiveLoan(t.tx, patronID, func(k []byte, loan *models.LoanRecord) error {
		if found == nil && loan.BookID == bookID {
			key = append([]byte(nil), k...)
			found = loan
		}
		return nil
	})
	if err != nil {
		return err
	}
	if found == nil {
		return models.ErrLoanNotFound
	}

	found.Close(returnedAt)
	data, err := json.Marshal(found)
	if err != nil {
		return err
	}
	return t.tx.Bucket(loansBucket).Put(key, data)
}
