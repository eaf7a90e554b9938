// Package token implements the three-kind JWT codec used by the session
// layer. Each kind carries its own HS256 secret and lifetime so that a token
// of one kind can never be replayed as another.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ImSudipBiswas/swiftcart/internal/model"
)

// Kind selects which secret and TTL a token is issued or decoded with.
type Kind string

const (
	KindAccess            Kind = "accessToken"
	KindRefresh           Kind = "refreshToken"
	KindEmailVerification Kind = "emailVerification"
)

// ErrNoSecret is returned by Issue when the kind's signing secret is not
// configured. Handlers translate it into a 500; a nil Decode result, by
// contrast, is an ordinary 401-class outcome.
var ErrNoSecret = errors.New("token: signing secret is not configured")

// Claims is the union of per-kind payloads: access tokens carry UserID+Role,
// refresh tokens carry UserID, email-verification tokens carry Email.
type Claims struct {
	UserID string
	Role   model.Role
	Email  string
}

// KindConfig holds the secret and lifetime for one token kind.
type KindConfig struct {
	Secret string
	TTL    time.Duration
}

// Codec issues and decodes the three token kinds.
type Codec struct {
	Access            KindConfig
	Refresh           KindConfig
	EmailVerification KindConfig
}

func (c *Codec) kindConfig(kind Kind) KindConfig {
	switch kind {
	case KindAccess:
		return c.Access
	case KindRefresh:
		return c.Refresh
	case KindEmailVerification:
		return c.EmailVerification
	}
	return KindConfig{}
}

// TTL reports the configured lifetime of a kind; handlers reuse it for the
// cookie max-age so cookies and tokens always expire together.
func (c *Codec) TTL(kind Kind) time.Duration {
	return c.kindConfig(kind).TTL
}

// Issue signs a token of the given kind. Only the claims relevant to the
// kind are embedded.
func (c *Codec) Issue(kind Kind, cl Claims) (string, error) {
	kc := c.kindConfig(kind)
	if kc.Secret == "" {
		return "", ErrNoSecret
	}
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(kc.TTL).Unix(),
	}
	switch kind {
	case KindAccess:
		claims["id"] = cl.UserID
		claims["role"] = string(cl.Role)
	case KindRefresh:
		claims["id"] = cl.UserID
	case KindEmailVerification:
		claims["email"] = cl.Email
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(kc.Secret))
}

// Decode parses and verifies a token of the given kind. A tampered signature,
// a token signed with another kind's secret, or an expired token all yield
// nil; decoding never panics or leaks a transport-level error.
func (c *Codec) Decode(kind Kind, raw string) *Claims {
	kc := c.kindConfig(kind)
	if kc.Secret == "" || raw == "" {
		return nil
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(kc.Secret), nil
	})
	if err != nil || !tok.Valid {
		return nil
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	out := &Claims{}
	if v, ok := mc["id"].(string); ok {
		out.UserID = v
	}
	if v, ok := mc["role"].(string); ok {
		out.Role, _ = model.ParseRole(v)
	}
	if v, ok := mc["email"].(string); ok {
		out.Email = v
	}
	return out
}
