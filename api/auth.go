/*
auth.go - Shared-password gate with idle session expiry

PURPOSE:
  Protects every /api route except login. There is a single operator
  account: a username and a bcrypt password hash from configuration.

SESSIONS:
  A session is an HS256 JWT whose expiry is now + idle timeout. Every
  authenticated request gets a fresh token in the X-Session-Token response
  header, so a client that keeps working never expires and a client idle
  for the full timeout must log in again. Every token minted for one login
  carries the same session id (sid), and logout revokes that id, so no
  earlier refreshed token of the session can be replayed.

CONFIRMATION:
  Backup, restore and reset also require the password in the
  X-Confirm-Password header.

SEE ALSO:
  - server.go: where the middlewares are mounted
  - handlers.go: Login, Refresh, Logout
*/
package api

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// SessionHeader carries the refreshed token on authenticated responses.
	SessionHeader = "X-Session-Token"

	// ConfirmHeader carries the password for privileged commands.
	ConfirmHeader = "X-Confirm-Password"
)

var (
	ErrBadCredentials = errors.New("invalid username or password")
	ErrInvalidSession = errors.New("invalid or expired session")
)

// Claims are the JWT claims of a session.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Session is an issued token.
type Session struct {
	Token     string
	ID        string // jti, unique per token
	SessionID string // shared by every refresh of one login
	ExpiresAt time.Time
}

// GateConfig configures a Gate.
type GateConfig struct {
	Username     string
	Password     string // hashed with bcrypt when PasswordHash is empty
	PasswordHash string
	IdleTimeout  time.Duration
	Secret       string // random when empty; sessions then end with the process
	Now          func() time.Time
}

// Gate authenticates the operator and manages sessions.
type Gate struct {
	username string
	hash     []byte
	secret   []byte
	idle     time.Duration
	now      func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // sid -> latest possible token expiry
}

// NewGate builds a gate from configuration.
func NewGate(cfg GateConfig) (*Gate, error) {
	if cfg.IdleTimeout <= 0 {
		return nil, fmt.Errorf("auth: idle timeout must be positive")
	}

	hash := []byte(cfg.PasswordHash)
	if len(hash) == 0 {
		if cfg.Password == "" {
			return nil, fmt.Errorf("auth: password is required")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("auth: hash password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("auth: password hash: %w", err)
	}

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("auth: generate secret: %w", err)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Gate{
		username: cfg.Username,
		hash:     hash,
		secret:   secret,
		idle:     cfg.IdleTimeout,
		now:      now,
		revoked:  make(map[string]time.Time),
	}, nil
}

// IdleTimeout returns the session lifetime without activity.
func (g *Gate) IdleTimeout() time.Duration { return g.idle }

// CheckPassword reports whether password matches the shared password.
func (g *Gate) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(g.hash, []byte(password)) == nil
}

// Login verifies credentials and issues a session.
func (g *Gate) Login(username, password string) (Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passOK := g.CheckPassword(password)
	if !userOK || !passOK {
		return Session{}, ErrBadCredentials
	}
	return g.Issue(username)
}

// Issue starts a new session for subject.
func (g *Gate) Issue(subject string) (Session, error) {
	return g.sign(subject, uuid.NewString())
}

// Refresh signs a token with a fresh idle deadline for the session of claims.
func (g *Gate) Refresh(claims *Claims) (Session, error) {
	if claims == nil || claims.SessionID == "" {
		return Session{}, ErrInvalidSession
	}
	return g.sign(claims.Subject, claims.SessionID)
}

func (g *Gate) sign(subject, sid string) (Session, error) {
	now := g.now()
	claims := Claims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.idle)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return Session{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return Session{
		Token:     signed,
		ID:        claims.ID,
		SessionID: sid,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify parses and validates a token. Revoked tokens are rejected.
func (g *Gate) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidSession
	}

	g.mu.Lock()
	_, revoked := g.revoked[claims.SessionID]
	g.mu.Unlock()
	if revoked {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Revoke invalidates every token of the session of claims. No token of it
// can outlive now + idle timeout, so the entry is purged after that.
func (g *Gate) Revoke(claims *Claims) {
	if claims == nil || claims.SessionID == "" {
		return
	}

	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()

	for sid, exp := range g.revoked {
		if !exp.After(now) {
			delete(g.revoked, sid)
		}
	}
	exp := now.Add(g.idle)
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.After(exp) {
		exp = claims.ExpiresAt.Time
	}
	g.revoked[claims.SessionID] = exp
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type ctxKey int

const (
	claimsKey ctxKey = iota
	sessionKey
)

// ClaimsFrom returns the verified claims of the request, if any.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok
}

// SessionFrom returns the refreshed session issued for the request, if any.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

// Middleware requires a valid bearer token and slides the idle deadline.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required", nil)
			return
		}

		claims, err := g.Verify(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "session expired, please log in again", err)
			return
		}

		refreshed, err := g.Refresh(claims)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to refresh session", err)
			return
		}
		w.Header().Set(SessionHeader, refreshed.Token)

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = context.WithValue(ctx, sessionKey, refreshed)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePassword rejects requests without the correct ConfirmHeader.
func (g *Gate) RequirePassword(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pw := r.Header.Get(ConfirmHeader)
		if pw == "" || !g.CheckPassword(pw) {
			writeError(w, http.StatusForbidden, "password confirmation failed", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
