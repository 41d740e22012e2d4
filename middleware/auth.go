package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bookreviews/models"
	"bookreviews/store"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const userKey contextKey = "user"

// SessionCookie is the cookie carrying the signed session credential.
const SessionCookie = "token"

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Auth validates the session credential (cookie, or Authorization
// Bearer header as a fallback) and resolves it to a live user record.
// The live lookup means a deleted account or changed role takes effect
// on the very next request instead of living on inside stale claims.
func Auth(db store.Store, jwtSecret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				http.Error(w, `{"error":"Not authorized, please login."}`, http.StatusUnauthorized)
				return
			}
			token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, `{"error":"Not authorized, please login."}`, http.StatusUnauthorized)
				return
			}
			claims, ok := token.Claims.(*Claims)
			if !ok {
				http.Error(w, `{"error":"Not authorized, please login."}`, http.StatusUnauthorized)
				return
			}
			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				http.Error(w, `{"error":"Not authorized, please login."}`, http.StatusUnauthorized)
				return
			}
			user, err := db.UserByID(r.Context(), userID)
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, `{"error":"User not found."}`, http.StatusUnauthorized)
				return
			}
			if err != nil {
				http.Error(w, `{"error":"something went wrong"}`, http.StatusInternalServerError)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// CurrentUser returns the authenticated user attached by Auth.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}
