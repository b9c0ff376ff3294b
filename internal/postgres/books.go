package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"library-lending-service/internal/models"
)

var bookColumns = []interface{}{
	colID, colISBN, colTitle, colAuthor, colTotalCopies, colAvailableCopies, colCreatedAt, colUpdatedAt,
}

func (s *Store) selectBooks(ctx context.Context, db queryer, where ...goqu.Expression) ([]*models.Book, error) {
	stmt := builder().
		From(tableBooks).
		Select(bookColumns...).
		Where(where...).
		Order(goqu.I(colID).Asc())

	query, err := s.toSQL(stmt)
	if err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, db, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer s.closeRows(rows)

	books := []*models.Book{}
	for rows.Next() {
		var book models.Book
		err := rows.Scan(&book.ID, &book.ISBN, &book.Title, &book.Author,
			&book.TotalCopies, &book.AvailableCopies, &book.CreatedAt, &book.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, &book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read books: %w", err)
	}

	return books, nil
}

func (s *Store) selectOneBook(ctx context.Context, db queryer, where goqu.Expression) (*models.Book, error) {
	books, err := s.selectBooks(ctx, db, where)
	if err != nil || len(books) == 0 {
		return nil, err
	}
	return books[0], nil
}

// FindBookByID returns the book, or nil when no row matches
func (s *Store) FindBookByID(ctx context.Context, id int) (*models.Book, error) {
	return s.selectOneBook(ctx, s.db, goqu.C(colID).Eq(id))
}

// FindBookByISBN returns the book with the given ISBN, or nil
func (s *Store) FindBookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	return s.selectOneBook(ctx, s.db, goqu.C(colISBN).Eq(isbn))
}

// ListAllBooks returns every book ordered by ID
func (s *Store) ListAllBooks(ctx context.Context) ([]*models.Book, error) {
	return s.selectBooks(ctx, s.db)
}

// InsertBook inserts the book and reads back its generated ID and timestamps.
// The unique index on isbn turns a concurrent duplicate into models.ErrDuplicateISBN.
func (s *Store) InsertBook(ctx context.Context, book *models.Book) error {
	stmt := builder().
		Insert(tableBooks).
		Rows(goqu.Record{
			colISBN:            book.ISBN,
			colTitle:           book.Title,
			colAuthor:          book.Author,
			colTotalCopies:     book.TotalCopies,
			colAvailableCopies: book.AvailableCopies,
		}).
		Returning(colID, colCreatedAt, colUpdatedAt)

	query, err := s.toSQL(stmt)
	if err != nil {
		return err
	}

	rows, err := s.query(ctx, s.db, query)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateISBN
		}
		return fmt.Errorf("failed to insert book: %w", err)
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			if isUniqueViolation(err) {
				return models.ErrDuplicateISBN
			}
			return fmt.Errorf("failed to insert book: %w", err)
		}
		return fmt.Errorf("failed to insert book: no row returned")
	}

	if err := rows.Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt); err != nil {
		return fmt.Errorf("failed to scan inserted book: %w", err)
	}
	return nil
}
