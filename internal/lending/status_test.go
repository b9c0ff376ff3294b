package lending_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"library-lending-service/internal/lending"
	"library-lending-service/internal/models"
)

func Test_PatronStatus_ReportsActiveLoansAndFees(t *testing.T) {
	// arrange
	f := newFixture(t)
	first := f.givenBook(t, 1)
	f.givenBorrowed(t, patronID, first.ID)
	f.clock.Advance(days(5))
	second := f.givenBook(t, 1)
	f.givenBorrowed(t, patronID, second.ID)
	other := f.givenBook(t, 1)
	f.givenBorrowed(t, "999999", other.ID)
	// first is 10 days overdue, second 5
	f.clock.Advance(days(19))

	// act
	report, err := f.service.PatronStatus(context.Background(), patronID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, patronID, report.PatronID)
	assert.Equal(t, 2, report.BooksBorrowedCount)
	assert.InDelta(t, 6.50+2.50, report.TotalLateFees, 1e-9)
	assert.Equal(t, []models.BorrowedBook{
		{BookID: first.ID, Title: "Book 1", Author: "Jane Doe", DueDate: "2025-03-17", IsOverdue: true},
		{BookID: second.ID, Title: "Book 2", Author: "Jane Doe", DueDate: "2025-03-22", IsOverdue: true},
	}, report.CurrentlyBorrowed)
	assert.Equal(t, report.CurrentlyBorrowed, report.BorrowingHistory)
}

func Test_PatronStatus_NoLoans(t *testing.T) {
	f := newFixture(t)

	report, err := f.service.PatronStatus(context.Background(), patronID)

	require.NoError(t, err)
	assert.False(t, report.IsEmpty())
	assert.Zero(t, report.BooksBorrowedCount)
	assert.Zero(t, report.TotalLateFees)
	assert.NotNil(t, report.CurrentlyBorrowed)
	assert.Empty(t, report.CurrentlyBorrowed)
}

func Test_PatronStatus_InvalidPatronYieldsEmptyReport(t *testing.T) {
	store := new(mockStore)
	service := lending.NewService(store)

	report, err := service.PatronStatus(context.Background(), "12-456")

	require.NoError(t, err)
	assert.True(t, report.IsEmpty())
	assert.Equal(t, models.PatronStatusReport{}, report)
	store.AssertNotCalled(t, "ListActiveLoans", mock.Anything, mock.Anything)
}

func Test_PatronStatus_NotYetDueLoansCarryNoFee(t *testing.T) {
	f := newFixture(t)
	book := f.givenBook(t, 1)
	f.givenBorrowed(t, patronID, book.ID)
	f.clock.Advance(days(3))

	report, err := f.service.PatronStatus(context.Background(), patronID)

	require.NoError(t, err)
	assert.Zero(t, report.TotalLateFees)
	require.Len(t, report.CurrentlyBorrowed, 1)
	assert.False(t, report.CurrentlyBorrowed[0].IsOverdue)
}

func Test_PatronStatus_TotalRoundedToCents(t *testing.T) {
	// arrange
	policy := lending.DefaultPolicy()
	policy.TierOneRate = 0.333
	f := newFixture(t, lending.WithPolicy(policy))
	for i := 0; i < 3; i++ {
		book := f.givenBook(t, 1)
		f.givenBorrowed(t, patronID, book.ID)
	}
	f.clock.Advance(days(14 + 1))

	// act
	report, err := f.service.PatronStatus(context.Background(), patronID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1.00, report.TotalLateFees)
}

func Test_PatronStatus_StorageFailure(t *testing.T) {
	store := new(mockStore)
	store.On("ListActiveLoans", mock.Anything, patronID).Return([]*models.LoanRecord{}, nil)
	store.On("CountActiveLoans", mock.Anything, patronID).Return(0, assert.AnError)
	service := lending.NewService(store)

	_, err := service.PatronStatus(context.Background(), patronID)

	assert.Equal(t, lending.CodeStorage, lending.CodeOf(err))
	store.AssertExpectations(t)
}
