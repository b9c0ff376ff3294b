package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"library-lending-service/internal/middleware"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	token, _ := args.Get(0).(*auth.Token)
	return token, args.Error(1)
}

func protectedHandler(t *testing.T, verifier middleware.TokenVerifier) (http.Handler, *bool) {
	t.Helper()
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		uid, ok := middleware.StaffUIDFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "staff-1", uid)
		w.WriteHeader(http.StatusNoContent)
	})
	return middleware.RequireStaff(verifier)(next), &called
}

func Test_RequireStaff(t *testing.T) {
	testCases := []struct {
		name           string
		header         string
		token          *auth.Token
		verifyErr      error
		expectedStatus int
	}{
		{"missing header", "", nil, nil, http.StatusUnauthorized},
		{"not bearer", "Basic abc", nil, nil, http.StatusUnauthorized},
		{"invalid token", "Bearer bad", nil, assert.AnError, http.StatusUnauthorized},
		{"no role claim", "Bearer good", &auth.Token{UID: "staff-1", Claims: map[string]interface{}{}}, nil, http.StatusForbidden},
		{"reader role", "Bearer good", &auth.Token{UID: "staff-1", Claims: map[string]interface{}{"role": "reader"}}, nil, http.StatusForbidden},
		{"admin role", "Bearer good", &auth.Token{UID: "staff-1", Claims: map[string]interface{}{"role": "admin"}}, nil, http.StatusNoContent},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			verifier := new(mockVerifier)
			if tc.token != nil || tc.verifyErr != nil {
				verifier.On("VerifyIDToken", mock.Anything, mock.AnythingOfType("string")).Return(tc.token, tc.verifyErr)
			}
			handler, called := protectedHandler(t, verifier)
			req := httptest.NewRequest(http.MethodPost, "/books", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			// act
			handler.ServeHTTP(rec, req)

			// assert
			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Equal(t, tc.expectedStatus == http.StatusNoContent, *called)
			verifier.AssertExpectations(t)
		})
	}
}
