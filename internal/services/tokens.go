package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AuthTokenDuration is how long a signin token stays valid
	AuthTokenDuration = 72 * time.Hour
	// DocumentTokenDuration is the fixed lifetime of a document capability
	// token, independent of the caller's own session
	DocumentTokenDuration = 5 * time.Minute

	documentTokenAudience = "clinic-application-document"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
)

// jwtSecret is set once at startup from config.
var jwtSecret []byte

// InitTokens configures the signing secret for auth and capability tokens.
func InitTokens(secret string) {
	jwtSecret = []byte(secret)
}

// AuthClaims are the claims carried by a signin token.
type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueAuthToken creates a signed bearer token for a user.
func IssueAuthToken(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := AuthClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AuthTokenDuration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateAuthToken parses a bearer token and returns the user id and role.
func ValidateAuthToken(tokenString string) (uuid.UUID, string, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, "", ErrTokenExpired
		}
		return uuid.Nil, "", ErrTokenInvalid
	}
	if !token.Valid {
		return uuid.Nil, "", ErrTokenInvalid
	}
	// Auth tokens carry no audience; anything scoped to one is a capability
	// token and must not grant a session
	if len(claims.Audience) != 0 {
		return uuid.Nil, "", ErrTokenInvalid
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", ErrTokenInvalid
	}
	return userID, claims.Role, nil
}

// IssueDocumentToken creates a short-lived capability token bound to one
// clinic application. The subject is the application id, never a storage path.
func IssueDocumentToken(applicationID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   applicationID.String(),
		Audience:  jwt.ClaimStrings{documentTokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(DocumentTokenDuration)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateDocumentToken verifies a capability token and returns the clinic
// application id it grants access to. Expiry is reported distinctly from any
// other failure so callers can tell the two apart.
func ValidateDocumentToken(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(documentTokenAudience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrTokenExpired
		}
		return uuid.Nil, ErrTokenInvalid
	}
	if !token.Valid {
		return uuid.Nil, ErrTokenInvalid
	}
	appID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return appID, nil
}

func keyFunc(token *jwt.Token) (interface{}, error) {
	return jwtSecret, nil
}
