package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthTokenRoundTrip(t *testing.T) {
	InitTokens("test-secret")

	userID := uuid.New()
	token, err := IssueAuthToken(userID, "parent")
	require.NoError(t, err)

	parsedID, role, err := ValidateAuthToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedID)
	assert.Equal(t, "parent", role)
}

func TestAuthTokenRejectsWrongSecret(t *testing.T) {
	InitTokens("test-secret")
	token, err := IssueAuthToken(uuid.New(), "admin")
	require.NoError(t, err)

	InitTokens("different-secret")
	_, _, err = ValidateAuthToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDocumentTokenSubjectIsApplicationID(t *testing.T) {
	InitTokens("test-secret")

	applicationID := uuid.New()
	token, err := IssueDocumentToken(applicationID)
	require.NoError(t, err)

	parsedID, err := ValidateDocumentToken(token)
	require.NoError(t, err)
	assert.Equal(t, applicationID, parsedID)
}

func TestDocumentTokenExpiredIsDistinctFromInvalid(t *testing.T) {
	InitTokens("test-secret")

	// Sign an already expired token with the real secret
	claims := jwt.RegisteredClaims{
		Subject:   uuid.New().String(),
		Audience:  jwt.ClaimStrings{"clinic-application-document"},
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-10 * time.Minute)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-5 * time.Minute)),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidateDocumentToken(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = ValidateDocumentToken("garbage.token.value")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDocumentTokenNotAcceptedAsAuthToken(t *testing.T) {
	InitTokens("test-secret")

	authToken, err := IssueAuthToken(uuid.New(), "admin")
	require.NoError(t, err)

	// An auth token lacks the document audience
	_, err = ValidateDocumentToken(authToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthValidationRejectsDocumentToken(t *testing.T) {
	InitTokens("test-secret")

	docToken, err := IssueDocumentToken(uuid.New())
	require.NoError(t, err)

	// The document audience must not open a session
	_, _, err = ValidateAuthToken(docToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
