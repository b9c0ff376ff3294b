package models

// FeeStatus classifies a computed fee
type FeeStatus string

const (
	FeeStatusInvalidInput FeeStatus = "invalid_input"
	FeeStatusNoSuchLoan   FeeStatus = "no_such_loan"
	FeeStatusOnTime       FeeStatus = "on_time"
	FeeStatusOverdue      FeeStatus = "overdue"
	FeeStatusMaximumFee   FeeStatus = "maximum_fee"
)

var feeStatusText = map[FeeStatus]string{
	FeeStatusInvalidInput: "Invalid ID",
	FeeStatusNoSuchLoan:   "No such borrowed book",
	FeeStatusOnTime:       "Book was returned on time",
	FeeStatusOverdue:      "Book is overdue",
	FeeStatusMaximumFee:   "Maximum overdue fee",
}

// Text returns the human readable description of the status
func (s FeeStatus) Text() string {
	if text, ok := feeStatusText[s]; ok {
		return text
	}
	return string(s)
}

// FeeResult is a late fee computed for a single loan. It is never stored.
type FeeResult struct {
	Amount      float64   `json:"fee_amount"`
	DaysOverdue int       `json:"days_overdue"`
	Status      FeeStatus `json:"status"`
}

// IsCharged reports whether the result carries a non-zero fee
func (f FeeResult) IsCharged() bool {
	return f.Amount > 0
}
