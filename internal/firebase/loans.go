package firebase

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"library-lending-service/internal/models"
)

func (s *Store) activeLoans(patronID string) firestore.Query {
	return s.loans().
		Where("patron_id", "==", patronID).
		Where("status", "==", string(models.LoanStatusActive))
}

// CountActiveLoans counts the patron's loans that are not returned
func (s *Store) CountActiveLoans(ctx context.Context, patronID string) (int, error) {
	docs, err := s.activeLoans(patronID).Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to count active loans: %w", err)
	}
	return len(docs), nil
}

// ListActiveLoans returns the patron's active loans in borrow order.
// Sorting happens here to avoid a composite index.
func (s *Store) ListActiveLoans(ctx context.Context, patronID string) ([]*models.LoanRecord, error) {
	loans := []*models.LoanRecord{}

	iter := s.activeLoans(patronID).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate loans: %w", err)
		}

		var loan models.LoanRecord
		if err := doc.DataTo(&loan); err != nil {
			return nil, fmt.Errorf("failed to parse loan %s: %w", doc.Ref.ID, err)
		}
		loans = append(loans, &loan)
	}

	sort.SliceStable(loans, func(i, j int) bool {
		return loans[i].BorrowedAt.Before(loans[j].BorrowedAt)
	})

	return loans, nil
}
