package jwt

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJWT_GenerateAndValidate(t *testing.T) {
	j := New(WithSecretKey("test-secret"), WithExpiration(time.Minute))

	ctx := context.Background()

	token, err := j.Generate(ctx, 42)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Valid token should pass validation
	err = j.Validate(ctx, token)
	assert.NoError(t, err)

	userID, err := j.GetUserID(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	claims, err := j.GetClaims(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.NotNil(t, claims.ExpiresAt)
	assert.NotNil(t, claims.IssuedAt)
}

func TestJWT_ExpiredToken(t *testing.T) {
	ctx := context.Background()

	// A negative lifetime produces already-expired tokens; a zero
	// lifetime does the same because exp == iat.
	for _, exp := range []time.Duration{-time.Minute, 0} {
		j := New(WithSecretKey("test-secret"), WithExpiration(exp))

		token, err := j.Generate(ctx, 1)
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		err = j.Validate(ctx, token)
		assert.ErrorIs(t, err, ErrTokenExpired)

		_, err = j.GetUserID(ctx, token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	}
}

func TestJWT_InvalidToken(t *testing.T) {
	j := New(WithSecretKey("secret"), WithExpiration(time.Minute))
	ctx := context.Background()

	// Totally invalid string
	err := j.Validate(ctx, "invalid.token.string")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	claims, err := j.GetClaims(ctx, "invalid.token.string")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWT_WrongKey(t *testing.T) {
	ctx := context.Background()

	issuer := New(WithSecretKey("key-one"), WithExpiration(time.Minute))
	verifier := New(WithSecretKey("key-two"), WithExpiration(time.Minute))

	token, err := issuer.Generate(ctx, 7)
	assert.NoError(t, err)

	err = verifier.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWT_TamperedToken(t *testing.T) {
	ctx := context.Background()
	j := New(WithSecretKey("secret"), WithExpiration(time.Minute))

	token, err := j.Generate(ctx, 7)
	assert.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	err = j.Validate(ctx, tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWT_GetTokenFromRequest(t *testing.T) {
	j := New()
	ctx := context.Background()

	tests := []struct {
		name          string
		header        string
		expectedToken string
		expectedErr   error
	}{
		{"ValidBearer", "Bearer mytoken123", "mytoken123", nil},
		{"LowercaseBearer", "bearer mytoken123", "mytoken123", nil},
		{"NoHeader", "", "", ErrAuthHeaderMissing},
		{"InvalidScheme", "Token mytoken123", "", ErrAuthHeaderMalformed},
		{"TooManyParts", "Bearer a b c", "", ErrAuthHeaderMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			token, err := j.GetTokenFromRequest(ctx, req)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedToken, token)
			}
		})
	}
}
