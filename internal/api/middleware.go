// Package api implements the Quill REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/starford/quill/internal/authservice"
)

type ctxKey int

const userIDKey ctxKey = iota

// AuthMiddleware returns middleware that validates the "Authorization:
// Bearer <token>" header and stores the authenticated user id on the request
// context.
func AuthMiddleware(auth *authservice.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			userID, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
		})
	}
}

// requestUser returns the authenticated user id placed by AuthMiddleware.
func requestUser(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
