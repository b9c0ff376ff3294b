package models

// BorrowedBook is one line of a patron status report
type BorrowedBook struct {
	BookID    int    `json:"book_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	DueDate   string `json:"due_date"`
	IsOverdue bool   `json:"is_overdue"`
}

// PatronStatusReport summarizes a patron's active loans and owed fees.
// The zero value is the empty report returned for invalid patron IDs.
type PatronStatusReport struct {
	PatronID           string         `json:"patron_id,omitempty"`
	CurrentlyBorrowed  []BorrowedBook `json:"currently_borrowed"`
	TotalLateFees      float64        `json:"total_late_fees"`
	BooksBorrowedCount int            `json:"books_borrowed_count"`
	BorrowingHistory   []BorrowedBook `json:"borrowing_history"`
}

// IsEmpty reports whether this is the empty report of an invalid or unknown patron
func (r PatronStatusReport) IsEmpty() bool {
	return r.PatronID == ""
}
