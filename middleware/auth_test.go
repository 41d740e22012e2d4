package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookreviews/middleware"
	"bookreviews/models"
	"bookreviews/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret, userID string, ttl time.Duration) string {
	t.Helper()
	claims := &middleware.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthTestServer(t *testing.T) (*store.Memory, http.Handler, *models.User) {
	t.Helper()
	db := store.NewMemory()
	user := &models.User{Name: "alice", Email: "alice@example.com", Role: models.RoleUser}
	_, err := db.CreateUser(context.Background(), user)
	require.NoError(t, err)

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.CurrentUser(r.Context())
		require.True(t, ok)
		w.Write([]byte(u.Role))
	})
	return db, middleware.Auth(db, testSecret)(handler), user
}

func TestAuthRejectsMissingAndBadTokens(t *testing.T) {
	_, handler, user := newAuthTestServer(t)

	cases := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no credential", func(r *http.Request) {}},
		{"expired token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, user.ID.Hex(), -time.Hour))
		}},
		{"wrong secret", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", user.ID.Hex(), time.Hour))
		}},
		{"malformed user id", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "not-an-object-id", time.Hour))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthAcceptsCookieAndBearer(t *testing.T) {
	_, handler, user := newAuthTestServer(t)
	token := signToken(t, testSecret, user.ID.Hex(), time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// A still-valid token for a deleted account must stop working
// immediately: validation resolves to a live user lookup, not cached
// claims.
func TestAuthDoesLiveUserLookup(t *testing.T) {
	db, handler, user := newAuthTestServer(t)
	token := signToken(t, testSecret, user.ID.Hex(), time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleUser, rec.Body.String())

	// a role change is visible on the very next request
	db.SetRole(user.ID, models.RoleAdmin)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleAdmin, rec.Body.String())

	// and deletion revokes access outright
	db.DeleteUser(user.ID)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
