package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"firerisk/internal"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	contextKeyUserID contextKey = "user_id"
	contextKeyEmail  contextKey = "email"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// RequireAuth resolves the caller and adds them to the request context.
// Pages redirect to the login screen, API calls get a 401.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, email, err := s.authenticate(r)
		if err != nil {
			s.logger.WithError(err).Debug("request not authenticated")

			if isAPIRequest(r) {
				s.writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Message: "Please login"})
				return
			}

			if r.Method == http.MethodGet {
				s.setRedirectCookie(w, r.URL.Path, time.Minute*5)
			}
			s.redirectToLogin(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
		if email != "" {
			ctx = context.WithValue(ctx, contextKeyEmail, email)
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"email":   email,
		}).Debug("authenticated user")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticateCookie decrypts the session cookie and verifies the Cognito
// access token inside it against the pool's JWKS.
func (s *Service) authenticateCookie(r *http.Request) (string, string, error) {
	cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
	if err != nil {
		return "", "", fmt.Errorf("no access token cookie: %w", err)
	}

	var accessToken string
	if err := s.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value, &accessToken); err != nil {
		return "", "", fmt.Errorf("decrypt access token: %w", err)
	}

	set, err := s.jwksCache.Lookup(r.Context(), s.jwksURL)
	if err != nil {
		return "", "", fmt.Errorf("fetch jwks: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	)
	if err != nil {
		return "", "", fmt.Errorf("parse jwt: %w", err)
	}

	userID, ok := token.Subject()
	if !ok || userID == "" {
		return "", "", fmt.Errorf("no subject claim in access token")
	}

	// access tokens usually omit email, it is optional
	var email string
	_ = token.Get("email", &email)

	return userID, email, nil
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
