package lending

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"library-lending-service/internal/models"
)

// NewBook is the input of AddBook
type NewBook struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	TotalCopies int    `json:"total_copies"`
}

// BookAdded is the successful result of AddBook
type BookAdded struct {
	Book    *models.Book `json:"book"`
	Message string       `json:"message"`
}

// SearchType selects the field a catalog search matches against
type SearchType string

const (
	SearchByTitle  SearchType = "title"
	SearchByAuthor SearchType = "author"
	SearchByISBN   SearchType = "isbn"
)

// AddBook validates input and registers a new book with every copy available
func (s *Service) AddBook(ctx context.Context, input NewBook) (*BookAdded, error) {
	title := strings.TrimSpace(input.Title)
	author := strings.TrimSpace(input.Author)

	if err := s.validateNewBook(title, author, input); err != nil {
		return nil, err
	}

	existing, err := s.store.FindBookByISBN(ctx, input.ISBN)
	if err != nil {
		s.logger.Error("isbn lookup failed", "isbn", input.ISBN, "error", err)
		return nil, storageError("Database error occurred while adding the book.", err)
	}
	if existing != nil {
		return nil, newError(CodeDuplicateISBN, "A book with this ISBN already exists.")
	}

	book := &models.Book{
		Title:           title,
		Author:          author,
		ISBN:            input.ISBN,
		TotalCopies:     input.TotalCopies,
		AvailableCopies: input.TotalCopies,
	}

	if err := s.store.InsertBook(ctx, book); err != nil {
		// Another request may have registered the ISBN after our lookup
		if errors.Is(err, models.ErrDuplicateISBN) {
			return nil, newError(CodeDuplicateISBN, "A book with this ISBN already exists.")
		}
		s.logger.Error("insert book failed", "isbn", input.ISBN, "error", err)
		return nil, storageError("Database error occurred while adding the book.", err)
	}

	s.logger.Info("book added", "book_id", book.ID, "isbn", book.ISBN, "copies", book.TotalCopies)

	return &BookAdded{
		Book:    book,
		Message: fmt.Sprintf(`Book "%s" has been successfully added to the catalog.`, title),
	}, nil
}

func (s *Service) validateNewBook(title, author string, input NewBook) error {
	if title == "" {
		return newError(CodeInvalidTitle, "Title is required.")
	}
	if len([]rune(title)) > s.policy.MaxTitleLength {
		return newError(CodeInvalidTitle, fmt.Sprintf("Title must be less than %d characters.", s.policy.MaxTitleLength))
	}
	if author == "" {
		return newError(CodeInvalidAuthor, "Author is required.")
	}
	if len([]rune(author)) > s.policy.MaxAuthorLen {
		return newError(CodeInvalidAuthor, fmt.Sprintf("Author must be less than %d characters.", s.policy.MaxAuthorLen))
	}
	// Length only; the digit content is not checked
	if len(input.ISBN) != s.policy.ISBNLength {
		return newError(CodeInvalidISBN, fmt.Sprintf("ISBN must be exactly %d digits.", s.policy.ISBNLength))
	}
	if input.TotalCopies <= 0 {
		return newError(CodeInvalidCopies, "Total copies must be a positive integer.")
	}
	return nil
}

// GetBook returns a single book
func (s *Service) GetBook(ctx context.Context, bookID int) (*models.Book, error) {
	book, err := s.store.FindBookByID(ctx, bookID)
	if err != nil {
		return nil, storageError("Database error occurred while loading the book.", err)
	}
	if book == nil {
		return nil, newError(CodeBookNotFound, "Book not found.")
	}
	return book, nil
}

// ListBooks returns the whole catalog
func (s *Service) ListBooks(ctx context.Context) ([]*models.Book, error) {
	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return nil, storageError("Database error occurred while listing books.", err)
	}
	return books, nil
}

// SearchBooks filters the catalog. Title and author match partially and
// case-insensitively, ISBN matches exactly. An unknown search type
// yields an empty result.
func (s *Service) SearchBooks(ctx context.Context, term string, searchType SearchType) ([]*models.Book, error) {
	term = strings.ToLower(strings.TrimSpace(term))

	switch searchType {
	case SearchByTitle, SearchByAuthor, SearchByISBN:
	default:
		return []*models.Book{}, nil
	}

	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return nil, storageError("Database error occurred while searching books.", err)
	}

	matches := []*models.Book{}
	for _, book := range books {
		switch searchType {
		case SearchByTitle:
			if strings.Contains(strings.ToLower(book.Title), term) {
				matches = append(matches, book)
			}
		case SearchByAuthor:
			if strings.Contains(strings.ToLower(book.Author), term) {
				matches = append(matches, book)
			}
		case SearchByISBN:
			if book.ISBN == term {
				matches = append(matches, book)
			}
		}
	}

	return matches, nil
}
