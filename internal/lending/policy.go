package lending

import (
	"math"
	"time"
)

// Policy holds the lending rules. DefaultPolicy returns the library's standard rules.
type Policy struct {
	LoanPeriod  time.Duration
	BorrowLimit int

	// LegacyLimitCheck rejects a borrow only when the active count is
	// strictly greater than BorrowLimit, so a patron holding exactly
	// BorrowLimit loans may take one more.
	LegacyLimitCheck bool

	TierOneDays    int
	TierOneRate    float64
	TierTwoRate    float64
	MaximumFee     float64
	MaxBookID      int
	MaxTitleLength int
	MaxAuthorLen   int
	ISBNLength     int
	PatronIDLength int
}

// DefaultPolicy returns 14 day loans, 5 concurrent loans and the
// 0.50/1.00 fee tiers capped at 15.00
func DefaultPolicy() Policy {
	return Policy{
		LoanPeriod:     14 * 24 * time.Hour,
		BorrowLimit:    5,
		TierOneDays:    7,
		TierOneRate:    0.50,
		TierTwoRate:    1.00,
		MaximumFee:     15.00,
		MaxBookID:      math.MaxInt32,
		MaxTitleLength: 200,
		MaxAuthorLen:   100,
		ISBNLength:     13,
		PatronIDLength: 6,
	}
}

// limitReached decides whether a patron with activeLoans may not borrow another book
func (p Policy) limitReached(activeLoans int) bool {
	if p.LegacyLimitCheck {
		return activeLoans > p.BorrowLimit
	}
	return activeLoans >= p.BorrowLimit
}
