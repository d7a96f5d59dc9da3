package access

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidPassword is returned by Login for a wrong password.
	ErrInvalidPassword = errors.New("incorrect password")
	// ErrInvalidToken is returned by Verify for any unusable token.
	ErrInvalidToken = errors.New("invalid access token")
	// ErrNoGrant is returned by protected operations called without a grant.
	ErrNoGrant = errors.New("access not granted")
	// ErrGrantExpired is returned by Check once a token grant has lapsed.
	ErrGrantExpired = errors.New("access grant expired")
)

const defaultSubject = "dashboard"

// Grant is the capability protected operations require. Only this package
// can produce a valid one.
type Grant struct {
	subject   string
	expiresAt time.Time
	open      bool
	valid     bool
	now       func() time.Time
}

// Valid reports whether the grant was issued by this package.
func (g Grant) Valid() bool { return g.valid }

// Subject names who the grant was issued to.
func (g Grant) Subject() string { return g.subject }

// ExpiresAt is zero for open grants.
func (g Grant) ExpiresAt() time.Time { return g.expiresAt }

// Open reports whether the grant was issued without a password.
func (g Grant) Open() bool { return g.open }

// Expired reports whether a token grant is past its expiry on the clock of
// the issuer that made it. Open grants never expire.
func (g Grant) Expired() bool {
	if g.open || g.expiresAt.IsZero() {
		return false
	}
	now := time.Now
	if g.now != nil {
		now = g.now
	}
	return !now().Before(g.expiresAt)
}

// Check returns ErrNoGrant unless g is valid, and ErrGrantExpired once it
// has lapsed.
func Check(g Grant) error {
	if !g.Valid() {
		return ErrNoGrant
	}
	if g.Expired() {
		return ErrGrantExpired
	}
	return nil
}

// Config configures an Issuer.
type Config struct {
	Password string
	Secret   string
	Issuer   string
	TTL      time.Duration
	Now      func() time.Time
}

// Issuer trades the dashboard password for signed access tokens.
type Issuer struct {
	password []byte
	secret   []byte
	issuer   string
	ttl      time.Duration
	now      func() time.Time
}

type claims struct {
	jwt.RegisteredClaims
}

// NewIssuer validates cfg. A password requires a signing secret.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.Password != "" && cfg.Secret == "" {
		return nil, fmt.Errorf("token secret is required when a password is set")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "recovery-dashboard"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Issuer{
		password: []byte(cfg.Password),
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		ttl:      cfg.TTL,
		now:      cfg.Now,
	}, nil
}

// Protected reports whether a password gates the dashboard.
func (i *Issuer) Protected() bool { return len(i.password) > 0 }

// Open grants access when no password is configured.
func (i *Issuer) Open() (Grant, error) {
	if i.Protected() {
		return Grant{}, ErrNoGrant
	}
	return Grant{subject: defaultSubject, open: true, valid: true}, nil
}

// Login checks password and returns a signed token.
func (i *Issuer) Login(password string) (string, error) {
	if !i.Protected() {
		return "", fmt.Errorf("no password configured")
	}
	if subtle.ConstantTimeCompare([]byte(password), i.password) != 1 {
		return "", ErrInvalidPassword
	}

	now := i.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   defaultSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify turns a token into a Grant.
func (i *Issuer) Verify(token string) (Grant, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Grant{}, fmt.Errorf("%w: token is required", ErrInvalidToken)
	}
	if !i.Protected() {
		return i.Open()
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Grant{}, fmt.Errorf("%w: token expired", ErrInvalidToken)
		}
		return Grant{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return Grant{
		subject:   parsed.Subject,
		expiresAt: parsed.ExpiresAt.Time,
		valid:     true,
		now:       i.now,
	}, nil
}

// Authenticate resolves CLI credentials: a token wins over a password, and
// an unprotected issuer grants open access.
func (i *Issuer) Authenticate(token, password string) (Grant, error) {
	if !i.Protected() {
		return i.Open()
	}
	if strings.TrimSpace(token) != "" {
		return i.Verify(token)
	}
	if password == "" {
		return Grant{}, ErrNoGrant
	}
	signed, err := i.Login(password)
	if err != nil {
		return Grant{}, err
	}
	return i.Verify(signed)
}
