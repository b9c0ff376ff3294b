package lending_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-lending-service/internal/lending"
	"library-lending-service/internal/memstore"
	"library-lending-service/internal/models"
)

func Test_ReturnBook_OnTime(t *testing.T) {
	// arrange
	f := newFixture(t)
	book := f.givenBook(t, 1)
	f.givenBorrowed(t, patronID, book.ID)
	f.clock.Advance(days(10))

	// act
	outcome, err := f.service.ReturnBook(context.Background(), patronID, book.ID)

	// assert
	require.NoError(t, err)
	assert.Nil(t, outcome.Fee)
	assert.False(t, outcome.Loan.IsActive())
	assert.Equal(t, models.LoanStatusReturned, outcome.Loan.Status)
	assert.Equal(t, "Successfully returned 'Book 1'. Return date: 2025-03-13", outcome.Message)
	assert.Equal(t, 1, f.availableCopies(t, book.ID))

	count, err := f.store.CountActiveLoans(context.Background(), patronID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func Test_ReturnBook_OverdueReportsFee(t *testing.T) {
	// arrange
	f := newFixture(t)
	book := f.givenBook(t, 1)
	f.givenBorrowed(t, patronID, book.ID)
	f.clock.Advance(days(14 + 10))

	// act
	outcome, err := f.service.ReturnBook(context.Background(), patronID, book.ID)

	// assert
	require.NoError(t, err)
	require.NotNil(t, outcome.Fee)
	assert.InDelta(t, 6.50, outcome.Fee.Amount, 1e-9)
	assert.Equal(t, 10, outcome.Fee.DaysOverdue)
	assert.Equal(t, models.FeeStatusOverdue, outcome.Fee.Status)
	assert.Equal(t,
		"Successfully returned 'Book 1'. Return date: 2025-03-27\n\nStatus: Book is overdue\nDays Overdue: 10\nLate Fee Amount: 6.50",
		outcome.Message)
	assert.Equal(t, 1, f.availableCopies(t, book.ID))
}

func Test_ReturnBook_ThenFeeReportsNoSuchLoan(t *testing.T) {
	f := newFixture(t)
	book := f.givenBook(t, 1)
	f.givenBorrowed(t, patronID, book.ID)
	_, err := f.service.ReturnBook(context.Background(), patronID, book.ID)
	require.NoError(t, err)

	fee, err := f.service.CalculateFee(context.Background(), patronID, book.ID)

	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusNoSuchLoan, fee.Status)
}

func Test_ReturnBook_Failures(t *testing.T) {
	testCases := []struct {
		name         string
		patronID     string
		unknownBook  bool
		expectedCode lending.Code
	}{
		{"invalid patron", "1234567", false, lending.CodeInvalidPatronID},
		{"unknown book", patronID, true, lending.CodeBookNotFound},
		{"book never borrowed by patron", "222222", false, lending.CodeNotBorrowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			f := newFixture(t)
			book := f.givenBook(t, 2)
			f.givenBorrowed(t, patronID, book.ID)
			bookID := book.ID
			if tc.unknownBook {
				bookID += 10
			}

			// act
			outcome, err := f.service.ReturnBook(context.Background(), tc.patronID, bookID)

			// assert
			assert.Nil(t, outcome)
			assert.Equal(t, tc.expectedCode, lending.CodeOf(err))
			assert.Equal(t, 1, f.availableCopies(t, book.ID))
		})
	}
}

func Test_ReturnBook_Twice(t *testing.T) {
	f := newFixture(t)
	book := f.givenBook(t, 1)
	f.givenBorrowed(t, patronID, book.ID)
	_, err := f.service.ReturnBook(context.Background(), patronID, book.ID)
	require.NoError(t, err)

	_, err = f.service.ReturnBook(context.Background(), patronID, book.ID)

	assert.Equal(t, lending.CodeNotBorrowed, lending.CodeOf(err))
	assert.Equal(t, "Patron has no record of borrowing this book.", lending.MessageOf(err))
	assert.Equal(t, 1, f.availableCopies(t, book.ID))
}

func Test_ReturnBook_FailedCloseRollsBackAvailability(t *testing.T) {
	// arrange
	base := memstore.New()
	setup := lending.NewService(base)
	added, err := setup.AddBook(context.Background(), validNewBook())
	require.NoError(t, err)
	_, err = setup.Borrow(context.Background(), patronID, added.Book.ID)
	require.NoError(t, err)
	service := lending.NewService(&failingTxStore{Store: base, failClose: assert.AnError})

	// act
	_, err = service.ReturnBook(context.Background(), patronID, added.Book.ID)

	// assert
	assert.Equal(t, lending.CodeStorage, lending.CodeOf(err))
	assert.ErrorIs(t, err, assert.AnError)

	book, err := base.FindBookByID(context.Background(), added.Book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, book.AvailableCopies)

	count, err := base.CountActiveLoans(context.Background(), patronID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
