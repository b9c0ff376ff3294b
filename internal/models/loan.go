package models

import "time"

// LoanStatus describes the lifecycle state of a loan record
type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "active"   // Book is with the patron
	LoanStatusReturned LoanStatus = "returned" // Book came back
)

// DueDateLayout is the display format used for due and return dates
const DueDateLayout = "2006-01-02"

// LoanRecord associates a patron with a borrowed book
type LoanRecord struct {
	ID         string     `json:"id" firestore:"id" db:"id"`
	PatronID   string     `json:"patron_id" firestore:"patron_id" db:"patron_id"`
	BookID     int        `json:"book_id" firestore:"book_id" db:"book_id"`
	BookTitle  string     `json:"book_title" firestore:"book_title" db:"book_title"`    // Denormalized for reports
	BookAuthor string     `json:"book_author" firestore:"book_author" db:"book_author"` // Denormalized for reports
	Status     LoanStatus `json:"status" firestore:"status" db:"status"`
	BorrowedAt time.Time  `json:"borrowed_at" firestore:"borrowed_at" db:"borrowed_at"`
	DueAt      time.Time  `json:"due_at" firestore:"due_at" db:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty" firestore:"returned_at,omitempty" db:"returned_at"`
}

// IsActive reports whether the book has not been returned yet
func (l *LoanRecord) IsActive() bool {
	return l.ReturnedAt == nil
}

// IsOverdue reports whether the loan is still active and past its due date at now
func (l *LoanRecord) IsOverdue(now time.Time) bool {
	return l.IsActive() && now.After(l.DueAt)
}

// Close marks the loan as returned at the given time
func (l *LoanRecord) Close(returnedAt time.Time) {
	l.ReturnedAt = &returnedAt
	l.Status = LoanStatusReturned
}
