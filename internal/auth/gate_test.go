package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyPair(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return key, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

func sign(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func gateApp(g Gate) *fiber.App {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		id, ok := g.Check(c)
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(id.UserID)
	})
	return app
}

func TestJWTGate(t *testing.T) {
	key, pub := newKeyPair(t)
	other, _ := newKeyPair(t)
	v, err := NewJWTVerifierFromPEM(pub)
	require.NoError(t, err)
	app := gateApp(NewJWTGate(v))

	valid := sign(t, key, jwt.MapClaims{"sub": "user_123", "exp": time.Now().Add(time.Hour).Unix()})
	expired := sign(t, key, jwt.MapClaims{"sub": "user_123", "exp": time.Now().Add(-time.Hour).Unix()})
	foreign := sign(t, other, jwt.MapClaims{"sub": "user_123"})
	noUser := sign(t, key, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	cases := []struct {
		name   string
		header string
		cookie string
		status int
	}{
		{"bearer header", "Bearer " + valid, "", fiber.StatusOK},
		{"session cookie", "", valid, fiber.StatusOK},
		{"no credentials", "", "", fiber.StatusUnauthorized},
		{"expired", "Bearer " + expired, "", fiber.StatusUnauthorized},
		{"wrong key", "Bearer " + foreign, "", fiber.StatusUnauthorized},
		{"no user claim", "Bearer " + noUser, "", fiber.StatusUnauthorized},
		{"malformed header", "Token " + valid, "", fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.Header.Set("Cookie", SessionCookie+"="+tc.cookie)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestVerifyTokenClaimPreference(t *testing.T) {
	key, pub := newKeyPair(t)
	v, err := NewJWTVerifierFromPEM(pub)
	require.NoError(t, err)

	id, err := v.VerifyToken(sign(t, key, jwt.MapClaims{"user_id": "a", "sub": "b"}))
	require.NoError(t, err)
	assert.Equal(t, "a", id)

	id, err = v.VerifyToken(sign(t, key, jwt.MapClaims{"user_uuid": "c"}))
	require.NoError(t, err)
	assert.Equal(t, "c", id)
}

func TestVerifyTokenOnlyRS256(t *testing.T) {
	key, pub := newKeyPair(t)
	v, err := NewJWTVerifierFromPEM(pub)
	require.NoError(t, err)

	rs512, err := jwt.NewWithClaims(jwt.SigningMethodRS512, jwt.MapClaims{"sub": "u"}).SignedString(key)
	require.NoError(t, err)
	_, err = v.VerifyToken(rs512)
	assert.Error(t, err)

	id, err := v.VerifyToken(sign(t, key, jwt.MapClaims{"user_uuid": "u-2", "sub": "u-3"}))
	require.NoError(t, err)
	assert.Equal(t, "u-2", id)
}

func TestStoredIdentity(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, before := FromLocals(c)
		Store(c, Identity{UserID: "u-9"})
		id, after := FromLocals(c)
		assert.False(t, before)
		assert.True(t, after)
		return c.SendString(id.UserID)
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
