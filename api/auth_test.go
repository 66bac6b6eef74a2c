package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type manualClock struct{ t time.Time }

func (c *manualClock) Now() time.Time          { return c.t }
func (c *manualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestNewGate_HashesPlaintextPassword(t *testing.T) {
	gate, err := NewGate(GateConfig{Username: "admin", Password: "pw", IdleTimeout: time.Minute})
	require.NoError(t, err)

	assert.True(t, gate.CheckPassword("pw"))
	assert.False(t, gate.CheckPassword("PW"))
	assert.Equal(t, time.Minute, gate.IdleTimeout())
}

func TestNewGate_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  GateConfig
	}{
		{"no password", GateConfig{IdleTimeout: time.Hour}},
		{"zero idle timeout", GateConfig{Password: "pw"}},
		{"malformed hash", GateConfig{PasswordHash: "plain", IdleTimeout: time.Hour}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGate(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestGate_IdleTimeout(t *testing.T) {
	// GIVEN: a session issued at 10:00 with a one hour idle timeout
	clock := &manualClock{t: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)}
	gate := newTestGate(t, clock.Now)

	session, err := gate.Login("admin", testPassword)
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(time.Hour), session.ExpiresAt)

	// WHEN: 59 minutes pass
	clock.Advance(59 * time.Minute)

	// THEN: still valid, and a refresh slides the deadline
	claims, err := gate.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)

	refreshed, err := gate.Refresh(claims)
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, refreshed.SessionID)
	assert.NotEqual(t, session.ID, refreshed.ID)

	// WHEN: the first deadline passes
	clock.Advance(2 * time.Minute)

	// THEN: the old token is expired, the refreshed one is not
	_, err = gate.Verify(session.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = gate.Verify(refreshed.Token)
	assert.NoError(t, err)
}

func TestGate_Revoke(t *testing.T) {
	// GIVEN: two logins, the first refreshed twice
	gate := newTestGate(t, time.Now)
	a, err := gate.Login("admin", testPassword)
	require.NoError(t, err)
	b, err := gate.Login("admin", testPassword)
	require.NoError(t, err)
	require.NotEqual(t, a.SessionID, b.SessionID)

	claims, err := gate.Verify(a.Token)
	require.NoError(t, err)
	a2, err := gate.Refresh(claims)
	require.NoError(t, err)
	claims2, err := gate.Verify(a2.Token)
	require.NoError(t, err)
	a3, err := gate.Refresh(claims2)
	require.NoError(t, err)

	// WHEN: the middle token is revoked
	gate.Revoke(claims2)

	// THEN: every token of that login is dead, the other login is not
	for _, tok := range []string{a.Token, a2.Token, a3.Token} {
		_, err = gate.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidSession)
	}
	_, err = gate.Verify(b.Token)
	assert.NoError(t, err)

	_, err = gate.Refresh(&Claims{})
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestGate_RejectsForeignTokens(t *testing.T) {
	gate := newTestGate(t, time.Now)

	t.Run("other secret", func(t *testing.T) {
		other, err := NewGate(GateConfig{Password: "pw", IdleTimeout: time.Hour, Secret: "another-secret"})
		require.NoError(t, err)
		session, err := other.Issue("admin")
		require.NoError(t, err)

		_, err = gate.Verify(session.Token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("unsigned", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = gate.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("no session id", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = gate.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("no expiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = gate.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}

func TestGate_LoginRejectsWrongUser(t *testing.T) {
	gate := newTestGate(t, time.Now)

	_, err := gate.Login("root", testPassword)
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = gate.Login("admin", "")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestRequirePassword(t *testing.T) {
	gate := newTestGate(t, time.Now)
	called := false
	h := gate.RequirePassword(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(ConfirmHeader, testPassword)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tt.header)

		got, ok := bearerToken(req)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestNewGate_AcceptsPrecomputedHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	gate, err := NewGate(GateConfig{PasswordHash: string(hash), IdleTimeout: time.Hour})
	require.NoError(t, err)
	assert.True(t, gate.CheckPassword("pw"))
}
