package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie carries the session token when no Authorization header is sent.
const SessionCookie = "__session"

// Identity is the authenticated caller.
type Identity struct {
	UserID string
}

const localsKey = "identity"

// Store keeps id on the request for later handlers.
func Store(c *fiber.Ctx, id Identity) {
	c.Locals(localsKey, id)
}

// FromLocals returns the identity a previous handler stored, if any.
func FromLocals(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(localsKey).(Identity)
	return id, ok
}

// Gate decides whether a request has a caller. It only inspects headers and
// cookies, never the body.
type Gate interface {
	Check(c *fiber.Ctx) (Identity, bool)
}

type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

type JWTGate struct {
	verifier TokenVerifier
}

func NewJWTGate(v TokenVerifier) *JWTGate {
	return &JWTGate{verifier: v}
}

func (g *JWTGate) Check(c *fiber.Ctx) (Identity, bool) {
	token := bearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		token = c.Cookies(SessionCookie)
	}
	if token == "" {
		return Identity{}, false
	}
	userID, err := g.verifier.VerifyToken(token)
	if err != nil {
		return Identity{}, false
	}
	return Identity{UserID: userID}, true
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
