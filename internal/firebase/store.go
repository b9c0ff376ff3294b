package firebase

import (
	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// BooksCollection holds one document per book, keyed by the decimal book ID
	BooksCollection = "books"
	// LoansCollection holds one document per loan record, keyed by the loan ID
	LoansCollection = "loans"
	// MetaCollection holds the book ID counter
	MetaCollection = "meta"

	countersDoc    = "counters"
	nextBookIDPath = "next_book_id"
)

// Logger is satisfied by *slog.Logger
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Store is a lending.Store on Firestore
type Store struct {
	fs     *firestore.Client
	prefix string
	logger Logger
}

// Option configures a Store
type Option func(*Store)

// WithCollectionPrefix prefixes every collection name, so several stores can share one database
func WithCollectionPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithLogger sets the logger for transaction outcomes
func WithLogger(logger Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store on an existing Firestore client
func NewStore(fs *firestore.Client, options ...Option) *Store {
	s := &Store{fs: fs, logger: nopLogger{}}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Store) books() *firestore.CollectionRef {
	return s.fs.Collection(s.prefix + BooksCollection)
}

func (s *Store) loans() *firestore.CollectionRef {
	return s.fs.Collection(s.prefix + LoansCollection)
}

func (s *Store) counters() *firestore.DocumentRef {
	return s.fs.Collection(s.prefix + MetaCollection).Doc(countersDoc)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
