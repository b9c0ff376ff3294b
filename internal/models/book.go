package models

import "time"

// Book represents a cataloged title and its copy counts
type Book struct {
	ID              int       `json:"id" firestore:"id" db:"id"`
	ISBN            string    `json:"isbn" firestore:"isbn" db:"isbn"`
	Title           string    `json:"title" firestore:"title" db:"title"`
	Author          string    `json:"author" firestore:"author" db:"author"`
	TotalCopies     int       `json:"total_copies" firestore:"total_copies" db:"total_copies"`
	AvailableCopies int       `json:"available_copies" firestore:"available_copies" db:"available_copies"`
	CreatedAt       time.Time `json:"created_at" firestore:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" firestore:"updated_at" db:"updated_at"`
}

// IsAvailable reports whether at least one copy can be lent out
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// CanAdjustAvailability reports whether applying delta keeps the
// available count within [0, TotalCopies]
func (b *Book) CanAdjustAvailability(delta int) bool {
	next := b.AvailableCopies + delta
	return next >= 0 && next <= b.TotalCopies
}

// AdjustAvailability applies delta to the available count.
// Returns ErrNoCopiesAvailable when the result would leave the valid range.
func (b *Book) AdjustAvailability(delta int) error {
	if !b.CanAdjustAvailability(delta) {
		return ErrNoCopiesAvailable
	}
	b.AvailableCopies += delta
	return nil
}
