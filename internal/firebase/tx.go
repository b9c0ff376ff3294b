package firebase

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"library-lending-service/internal/lending"
	"library-lending-service/internal/models"
)

// RunInTx collects the writes fn asks for and replays them in one
// Firestore transaction. Firestore requires every read of a transaction
// to happen before its first write, so all book and loan documents are
// read and checked first.
func (s *Store) RunInTx(ctx context.Context, fn func(tx lending.TxStore) error) error {
	intents := &txIntents{deltas: make(map[int]int)}
	if err := fn(intents); err != nil {
		return err
	}

	err := s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()

		books := make(map[int]*models.Book, len(intents.bookOrder))
		for _, id := range intents.bookOrder {
			doc, err := tx.Get(s.bookDoc(id))
			if isNotFound(err) {
				return models.ErrBookNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to get book %d: %w", id, err)
			}

			var book models.Book
			if err := doc.DataTo(&book); err != nil {
				return fmt.Errorf("failed to parse book %d: %w", id, err)
			}
			if err := book.AdjustAvailability(intents.deltas[id]); err != nil {
				return err
			}
			books[id] = &book
		}

		closing := make([]*firestore.DocumentRef, 0, len(intents.closes))
		for _, c := range intents.closes {
			query := s.activeLoans(c.patronID).Where("book_id", "==", c.bookID).Limit(1)
			iter := tx.Documents(query)
			doc, err := iter.Next()
			iter.Stop()
			if err == iterator.Done {
				return models.ErrLoanNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to find active loan: %w", err)
			}
			closing = append(closing, doc.Ref)
		}

		for _, id := range intents.bookOrder {
			err := tx.Update(s.bookDoc(id), []firestore.Update{
				{Path: "available_copies", Value: books[id].AvailableCopies},
				{Path: "updated_at", Value: now},
			})
			if err != nil {
				return err
			}
		}

		for _, record := range intents.inserts {
			if err := tx.Create(s.loans().Doc(record.ID), record); err != nil {
				return err
			}
		}

		for i, ref := range closing {
			err := tx.Update(ref, []firestore.Update{
				{Path: "status", Value: string(models.LoanStatusReturned)},
				{Path: "returned_at", Value: intents.closes[i].returnedAt},
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("firestore transaction failed: %w", err)
	}

	s.logger.Debug("firestore transaction committed",
		"books", len(intents.bookOrder), "inserted", len(intents.inserts), "closed", len(intents.closes))
	return nil
}

type closeIntent struct {
	patronID   string
	bookID     int
	returnedAt time.Time
}

// txIntents records the writes of a lending transaction
type txIntents struct {
	deltas    map[int]int
	bookOrder []int
	inserts   []*models.LoanRecord
	closes    []closeIntent
}

func (t *txIntents) AdjustBookAvailability(bookID int, delta int) error {
	if _, seen := t.deltas[bookID]; !seen {
		t.bookOrder = append(t.bookOrder, bookID)
	}
	t.deltas[bookID] += delta
	return nil
}

func (t *txIntents) InsertLoanRecord(record *models.LoanRecord) error {
	clone := *record
	t.inserts = append(t.inserts, &clone)
	return nil
}

func (t *txIntents) CloseLoanRecord(patronID string, bookID int, returnedAt time.Time) error {
	t.closes = append(t.closes, closeIntent{patronID: patronID, bookID: bookID, returnedAt: returnedAt})
	return nil
}
