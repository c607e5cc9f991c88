package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// userIDClaims are tried in order; the first non-empty string wins.
var userIDClaims = []string{"user_id", "user_uuid", "sub"}

var errNoUserID = errors.New("token carries no user id")

// JWTVerifier checks session tokens signed by the identity provider.
type JWTVerifier struct {
	pub *rsa.PublicKey
}

// NewJWTVerifier loads the provider's PEM public key from path.
func NewJWTVerifier(path string) (*JWTVerifier, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	return NewJWTVerifierFromPEM(b)
}

func NewJWTVerifierFromPEM(pem []byte) (*JWTVerifier, error) {
	pub, err := jwt.ParseRSAPublicKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &JWTVerifier{pub: pub}, nil
}

func (j *JWTVerifier) key(*jwt.Token) (interface{}, error) {
	return j.pub, nil
}

// VerifyToken returns the caller's user id. Only RS256 is accepted.
func (j *JWTVerifier) VerifyToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, j.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})); err != nil {
		return "", err
	}
	for _, name := range userIDClaims {
		if v, ok := claims[name].(string); ok && v != "" {
			return v, nil
		}
	}
	return "", errNoUserID
}
