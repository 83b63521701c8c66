package auth

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/shoppulse/internal/user"
)

func init() {
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)
}

var (
	admin    = &user.User{ID: "u-admin", Email: "admin@shoppulse.dev", Role: user.RoleAdmin}
	customer = &user.User{ID: "u-cust", Email: "jane@example.com", Role: user.RoleCustomer}
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	tok, err := iss.Issue(admin)
	require.NoError(t, err)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-admin", claims.UserID)
	assert.Equal(t, "admin@shoppulse.dev", claims.Email)
	assert.Equal(t, user.RoleAdmin, claims.Role)
}

func TestIssuer_RejectsBadTokens(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	tok, err := iss.Issue(customer)
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse(tok + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-admin", Role: user.RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	issued := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return issued }
	tok, err := iss.Issue(admin)
	require.NoError(t, err)

	iss.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPolicy(t *testing.T) {
	p, err := NewPolicy()
	require.NoError(t, err)

	cases := []struct {
		role, resource, action string
		want                   bool
	}{
		{"admin", ResourceAnalytics, ActionRead, true},
		{"admin", ResourceOrders, ActionWrite, true},
		{"admin", ResourceAnalytics, ActionWrite, false},
		{"customer", ResourceAnalytics, ActionRead, false},
		{"customer", ResourceOrders, ActionWrite, false},
		{"", ResourceAnalytics, ActionRead, false},
	}
	for _, c := range cases {
		got, err := p.Allowed(c.role, c.resource, c.action)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%s %s %s", c.role, c.resource, c.action)
	}
}

func newGuardedRouter(t *testing.T, iss *Issuer) (*gin.Engine, *bool) {
	t.Helper()
	p, err := NewPolicy()
	require.NoError(t, err)

	reached := false
	r := gin.New()
	r.GET("/admin/analytics", Authenticate(iss), Require(p, ResourceAnalytics, ActionRead), func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})
	return r, &reached
}

func TestMiddleware(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	adminTok, err := iss.Issue(admin)
	require.NoError(t, err)
	custTok, err := iss.Issue(customer)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"no header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + adminTok, http.StatusUnauthorized, ""},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized, ""},
		{"customer", "Bearer " + custTok, http.StatusForbidden, `{"error":"unauthorized"}`},
		{"admin", "Bearer " + adminTok, http.StatusOK, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, reached := newGuardedRouter(t, iss)
			req := httptest.NewRequest(http.MethodGet, "/admin/analytics", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, c.code, w.Code)
			assert.Equal(t, c.code == http.StatusOK, *reached)
			if c.body != "" {
				assert.JSONEq(t, c.body, w.Body.String())
			}
		})
	}
}

func TestOptional(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	tok, err := iss.Issue(customer)
	require.NoError(t, err)

	var got *Claims
	r := gin.New()
	r.POST("/events", Optional(iss), func(c *gin.Context) {
		got, _ = ClaimsFrom(c)
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/events", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, got)

	req = httptest.NewRequest(http.MethodPost, "/events", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u-cust", got.UserID)
}

type stubUsers struct {
	users map[string]*user.User
	err   error
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func TestLogin(t *testing.T) {
	hash, err := user.HashPassword("admin123")
	require.NoError(t, err)
	stored := *admin
	stored.PasswordHash = hash

	iss := NewIssuer("secret", time.Hour)
	svc := NewService(&stubUsers{users: map[string]*user.User{stored.Email: &stored}}, iss)

	res, err := svc.Login(context.Background(), " Admin@ShopPulse.dev ", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "u-admin", res.User.ID)
	claims, err := iss.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, claims.Role)

	_, err = svc.Login(context.Background(), stored.Email, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_StoreError(t *testing.T) {
	down := errors.New("db down")
	svc := NewService(&stubUsers{err: down}, NewIssuer("secret", time.Hour))

	_, err := svc.Login(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
