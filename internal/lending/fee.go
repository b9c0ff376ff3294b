package lending

import (
	"context"
	"math"
	"time"

	"library-lending-service/internal/models"
)

// ComputeFee applies the tiered late fee schedule of policy to a loan due
// at dueAt, evaluated at now. Days overdue are whole days, rounded down.
func ComputeFee(policy Policy, dueAt, now time.Time) models.FeeResult {
	daysOverdue := int(math.Floor(now.Sub(dueAt).Hours() / 24))
	if daysOverdue <= 0 {
		return models.FeeResult{Status: models.FeeStatusOnTime}
	}

	var amount float64
	if daysOverdue <= policy.TierOneDays {
		amount = policy.TierOneRate * float64(daysOverdue)
	} else {
		amount = policy.TierOneRate*float64(policy.TierOneDays) +
			policy.TierTwoRate*float64(daysOverdue-policy.TierOneDays)
	}

	if amount > policy.MaximumFee {
		return models.FeeResult{
			Amount:      policy.MaximumFee,
			DaysOverdue: daysOverdue,
			Status:      models.FeeStatusMaximumFee,
		}
	}

	return models.FeeResult{
		Amount:      amount,
		DaysOverdue: daysOverdue,
		Status:      models.FeeStatusOverdue,
	}
}

// CalculateFee computes the current late fee of a patron's active loan.
// Malformed input and missing loans are reported through the result
// status; the error is set only when the store fails.
func (s *Service) CalculateFee(ctx context.Context, patronID string, bookID int) (models.FeeResult, error) {
	if !s.policy.validPatronID(patronID) || !s.policy.validBookIDRange(bookID) {
		return models.FeeResult{Status: models.FeeStatusInvalidInput}, nil
	}

	loan, err := s.findActiveLoan(ctx, patronID, bookID)
	if err != nil {
		s.logger.Error("active loan lookup failed", "patron_id", patronID, "error", err)
		return models.FeeResult{}, storageError("Database error occurred while loading borrowed books.", err)
	}
	if loan == nil {
		return models.FeeResult{Status: models.FeeStatusNoSuchLoan}, nil
	}

	return ComputeFee(s.policy, loan.DueAt, s.now()), nil
}
