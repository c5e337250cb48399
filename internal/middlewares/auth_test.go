package middlewares

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/users-service/internal/jwt"
	"github.com/sbilibin2017/users-service/internal/models"
)

func TestAuthMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	user := &models.UserDB{ID: 7, Username: "michael", Email: "m@x.com", Active: true}

	tests := []struct {
		name         string
		mockSetup    func(tok *MockTokener, users *MockUserGetter, bl *MockBlocklister)
		useBlocklist bool
		expectedCode int
		expectedMsg  string
		wantNext     bool
	}{
		{
			name: "missing header",
			mockSetup: func(tok *MockTokener, users *MockUserGetter, bl *MockBlocklister) {
				tok.EXPECT().
					GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("", jwt.ErrAuthHeaderMissing)
			},
			expectedCode: http.StatusForbidden,
			expectedMsg:  "Provide a valid auth token.",
		},
		{
			name: "malformed header",
			mockSetup: func(tok *MockTokener, users *MockUserGetter, bl *MockBlocklister) {
				tok.EXPECT().
					GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("", jwt.ErrAuthHeaderMalformed)
			},
			expectedCode: http.StatusForbidden,
			expectedMsg:  "Provide a valid auth token.",
		},
		{
			name:         "revoked token",
			useBlocklist: true,
			mockSetup: func(tok *MockTokener, users *MockUserGetter, bl *MockBlocklister) {
				tok.EXPECT().
					GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("sometoken", nil)
				bl.EXPECT().Contains(gomock.Any(), "sometoken").Return(true, nil)
			},
			expectedCode: http.StatusUnauthorized,
			expectedMsg:  "Invalid token. Log in again",
		},
		{
			name:         "blocklist lookup error",
			useBlocklist: true,
			mockSetup: func(tok *MockTokener, users *MockUserGetter, bl *MockBlocklister) {
				tok.EXPECT().
					GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("sometoken", nil)
				bl.EXPECT().Contains(gomock.Any(), "sometoken").Return(false, errors.New("redis down"))
			},
			expectedCode: http.StatusUnauthorized,
			expectedMsg:  "Invalid token. Log in again",
		},
		{
			name: "expired token",
			mockSetup: func(tok *MockTokener, users *MockUserGetter, bl *MockBlocklister) {
				tok.EXPECT().
					GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("expired", nil)
				tok.EXPECT().
					GetUserID(gomock.Any(), "expired").
					Return(int64(0), jwt.ErrTokenExpired)
			},
			expectedCode: http.StatusUnauthorized,
			expectedMsg:  "Signature expired. Log in again",
		},
		{
			name: "invalid token",
			mockSetup: func(tok *MockTokener, users *MockUserGetter, bl *MockBlocklister) {
				tok.EXPECT().
					GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("garbage", nil)
				tok.EXPECT().
					GetUserID(gomock.Any(), "garbage").
					Return(int64(0), jwt.ErrTokenInvalid)
			},
			expectedCode: http.StatusUnauthorized,
			expectedMsg:  "Invalid token. Log in again",
		},
		{
			name: "unknown subject",
			mockSetup: func(tok *MockTokener, users *MockUserGetter, bl *MockBlocklister) {
				tok.EXPECT().
					GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("sometoken", nil)
				tok.EXPECT().GetUserID(gomock.Any(), "sometoken").Return(int64(99), nil)
				users.EXPECT().GetByID(gomock.Any(), int64(99)).Return(nil, nil)
			},
			expectedCode: http.StatusUnauthorized,
			expectedMsg:  "Invalid token. Log in again",
		},
		{
			name: "subject lookup error",
			mockSetup: func(tok *MockTokener, users *MockUserGetter, bl *MockBlocklister) {
				tok.EXPECT().
					GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("sometoken", nil)
				tok.EXPECT().GetUserID(gomock.Any(), "sometoken").Return(int64(7), nil)
				users.EXPECT().GetByID(gomock.Any(), int64(7)).Return(nil, errors.New("db error"))
			},
			expectedCode: http.StatusUnauthorized,
			expectedMsg:  "Invalid token. Log in again",
		},
		{
			name:         "valid token passes through",
			useBlocklist: true,
			mockSetup: func(tok *MockTokener, users *MockUserGetter, bl *MockBlocklister) {
				tok.EXPECT().
					GetTokenFromRequest(gomock.Any(), gomock.Any()).
					Return("sometoken", nil)
				bl.EXPECT().Contains(gomock.Any(), "sometoken").Return(false, nil)
				tok.EXPECT().GetUserID(gomock.Any(), "sometoken").Return(int64(7), nil)
				users.EXPECT().GetByID(gomock.Any(), int64(7)).Return(user, nil)
			},
			expectedCode: http.StatusOK,
			wantNext:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTokener := NewMockTokener(ctrl)
			mockUsers := NewMockUserGetter(ctrl)
			mockBlocklist := NewMockBlocklister(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockTokener, mockUsers, mockBlocklist)
			}

			var bl Blocklister
			if tt.useBlocklist {
				bl = mockBlocklist
			}

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				assert.Equal(t, user, GetUserFromContext(r.Context()))
				assert.Equal(t, "sometoken", GetTokenFromContext(r.Context()))
				w.WriteHeader(http.StatusOK)
			})

			guard := AuthMiddleware(mockTokener, mockUsers, bl)

			req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
			rr := httptest.NewRecorder()

			guard(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.Equal(t, tt.wantNext, nextCalled)

			if tt.expectedMsg != "" {
				var got map[string]any
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
				assert.Equal(t, "fail", got["status"])
				assert.Equal(t, tt.expectedMsg, got["message"])
			}
		})
	}
}

func TestUserAndTokenContextRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := req.Context()

	assert.Nil(t, GetUserFromContext(ctx))
	assert.Empty(t, GetTokenFromContext(ctx))

	user := &models.UserDB{ID: 1, Username: "michael"}
	ctx = SetUserToContext(ctx, user)
	ctx = SetTokenToContext(ctx, "sometoken")

	assert.Equal(t, user, GetUserFromContext(ctx))
	assert.Equal(t, "sometoken", GetTokenFromContext(ctx))
}
