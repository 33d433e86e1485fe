package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nikmy/shifter/pkg/errors"
)

const (
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

const defaultTTL = 7 * 24 * time.Hour

const ErrUnauthenticated = errors.Const("missing or invalid token")

// Principal is whoever a verified token was issued to.
type Principal struct {
	ID   string
	Name string
	Role string
}

func (p Principal) IsManager() bool {
	return p.Role == RoleManager
}

type claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func New(cfg Config) (*Authenticator, error) {
	if cfg.Secret == "" {
		return nil, errors.Fail("create authenticator: empty secret")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &Authenticator{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		parser: jwt.NewParser(opts...),
		now:    time.Now,
	}, nil
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

// Authenticate accepts an Authorization header value, with or without the
// "Bearer " prefix.
func (a *Authenticator) Authenticate(header string) (Principal, error) {
	raw := strings.TrimSpace(header)
	if len(raw) > len("bearer ") && strings.EqualFold(raw[:len("bearer ")], "bearer ") {
		raw = strings.TrimSpace(raw[len("bearer "):])
	}
	if raw == "" {
		return Principal{}, ErrUnauthenticated
	}

	var c claims
	_, err := a.parser.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return Principal{}, errors.Wrap(ErrUnauthenticated, err.Error())
	}

	if c.UserID == "" {
		return Principal{}, errors.Wrap(ErrUnauthenticated, "token has no user_id")
	}

	return Principal{ID: c.UserID, Name: c.Name, Role: c.Role}, nil
}

// Issue signs a token for p. Login is handled elsewhere; this serves
// tests and local tooling.
func (a *Authenticator) Issue(p Principal) (string, error) {
	now := a.now()

	c := claims{
		UserID: p.ID,
		Name:   p.Name,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.secret)
	if err != nil {
		return "", errors.WrapFail(err, "sign token")
	}
	return signed, nil
}
