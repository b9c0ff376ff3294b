package models

import "errors"

// Sentinel errors shared by all store backends
var (
	ErrBookNotFound      = errors.New("book not found")
	ErrLoanNotFound      = errors.New("active loan not found")
	ErrDuplicateISBN     = errors.New("a book with this ISBN already exists")
	ErrNoCopiesAvailable = errors.New("book availability out of range")
)
