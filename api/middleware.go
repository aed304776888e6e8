package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"moviemirror/internal/auth"
	"moviemirror/internal/authstate"
)

// SessionCookieName is the cookie carrying the session token for
// browser page loads. API clients use the Authorization header instead.
const SessionCookieName = "moviemirror_session"

// SessionMiddleware validates session tokens against the auth state
// store. While the store is still restoring sessions it answers 503 so
// clients retry instead of being treated as signed out.
func SessionMiddleware(store *authstate.Store) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Always allow OPTIONS for CORS
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := ExtractToken(r)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			state := store.Current(token)
			if state.IsLoading {
				w.Header().Set("Retry-After", "1")
				writeJSONError(w, http.StatusServiceUnavailable, "authentication state loading")
				return
			}
			if !state.IsAuthenticated {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), auth.ContextKeyAccountID, state.User.AccountID)
			ctx = context.WithValue(ctx, auth.ContextKeySession, *state.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PageGuardMiddleware protects browser page routes. While the store is
// still restoring sessions a loading placeholder is served instead of
// the protected page, since authentication cannot be decided yet.
// Unauthenticated visitors are redirected to the login page with the
// original target preserved in the next parameter so they land back
// where they were headed after signing in.
func PageGuardMiddleware(store *authstate.Store) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := store.Current(tokenFromCookie(r))
			if state.IsLoading {
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("<!doctype html><title>Loading</title><p>Loading&hellip;</p>"))
				return
			}
			if state.IsAuthenticated {
				next.ServeHTTP(w, r)
				return
			}

			target := r.URL.Path
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, "/login?next="+url.QueryEscape(target), http.StatusSeeOther)
		})
	}
}

// ExtractToken extracts the session token from the request.
// Priority: Authorization header > session cookie > ?token= query param
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}

	if token := tokenFromCookie(r); token != "" {
		return token
	}

	// Fall back to query parameter for contexts that cannot set headers
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}

	return ""
}

func tokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
