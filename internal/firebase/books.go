package firebase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"library-lending-service/internal/models"
)

func (s *Store) bookDoc(id int) *firestore.DocumentRef {
	return s.books().Doc(strconv.Itoa(id))
}

// FindBookByID returns the book, or nil when the document does not exist
func (s *Store) FindBookByID(ctx context.Context, id int) (*models.Book, error) {
	doc, err := s.bookDoc(id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}

	var book models.Book
	if err := doc.DataTo(&book); err != nil {
		return nil, fmt.Errorf("failed to parse book %d: %w", id, err)
	}
	return &book, nil
}

// FindBookByISBN returns the book with the given ISBN, or nil
func (s *Store) FindBookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	iter := s.books().Where("isbn", "==", isbn).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search book by isbn: %w", err)
	}

	var book models.Book
	if err := doc.DataTo(&book); err != nil {
		return nil, fmt.Errorf("failed to parse book: %w", err)
	}
	return &book, nil
}

// ListAllBooks returns every book ordered by ID
func (s *Store) ListAllBooks(ctx context.Context) ([]*models.Book, error) {
	books := []*models.Book{}

	iter := s.books().OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate books: %w", err)
		}

		var book models.Book
		if err := doc.DataTo(&book); err != nil {
			return nil, fmt.Errorf("failed to parse book %s: %w", doc.Ref.ID, err)
		}
		books = append(books, &book)
	}

	return books, nil
}

// InsertBook takes the next ID from the counter document and creates the
// book in the same transaction. The ISBN check runs inside the
// transaction, so two concurrent inserts cannot both succeed.
func (s *Store) InsertBook(ctx context.Context, book *models.Book) error {
	isbnQuery := s.books().Where("isbn", "==", book.ISBN).Limit(1)

	err := s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(isbnQuery).GetAll()
		if err != nil {
			return fmt.Errorf("failed to check isbn: %w", err)
		}
		if len(existing) > 0 {
			return models.ErrDuplicateISBN
		}

		nextID := 1
		counter, err := tx.Get(s.counters())
		switch {
		case isNotFound(err):
		case err != nil:
			return fmt.Errorf("failed to read book counter: %w", err)
		default:
			value, err := counter.DataAt(nextBookIDPath)
			if err != nil {
				return fmt.Errorf("failed to read book counter: %w", err)
			}
			if n, ok := value.(int64); ok {
				nextID = int(n)
			}
		}

		now := time.Now()
		book.ID = nextID
		book.CreatedAt = now
		book.UpdatedAt = now

		if err := tx.Set(s.counters(), map[string]interface{}{nextBookIDPath: nextID + 1}); err != nil {
			return err
		}
		return tx.Create(s.bookDoc(book.ID), book)
	})
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}

	s.logger.Debug("book document created", "book_id", book.ID)
	return nil
}
