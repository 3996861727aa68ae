// Package auth checks that admin requests carry a token granting the admin capability.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrForbidden    = errors.New("token does not grant the required role")
	ErrNoSecret     = errors.New("no signing secret configured")
)

const subjectContextKey = "auth.subject"

type claims struct {
	jwt.RegisteredClaims
	Role        string      `json:"role,omitempty"`
	AppMetadata appMetadata `json:"app_metadata,omitempty"`
}

type appMetadata struct {
	Role string `json:"role,omitempty"`
}

// Verifier validates HS256 tokens issued by the identity provider.
type Verifier struct {
	secret    []byte
	issuer    string
	adminRole string
}

func NewVerifier(secret, issuer, adminRole string) *Verifier {
	return &Verifier{
		secret:    []byte(secret),
		issuer:    issuer,
		adminRole: adminRole,
	}
}

// Issue signs a token for subject with role. Used for local development and tests.
func (v *Verifier) Issue(subject, role string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: role,
	})
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyAdmin returns the token subject if the token is valid and grants the admin role.
// Without a secret every token is rejected.
func (v *Verifier) VerifyAdmin(tokenString string) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrNoSecret
	}
	if tokenString == "" {
		return "", ErrMissingToken
	}

	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, options...)
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	if c.Role != v.adminRole && c.AppMetadata.Role != v.adminRole {
		return "", ErrForbidden
	}
	return c.Subject, nil
}

// Middleware guards admin routes. 401 without a valid token, 403 without the admin role.
func (v *Verifier) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				tokenString = ""
			}

			subject, err := v.VerifyAdmin(strings.TrimSpace(tokenString))
			switch {
			case errors.Is(err, ErrForbidden):
				slog.Warn("adminAuth: role check failed", "path", c.Path())
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden"})
			case err != nil:
				slog.Info("adminAuth: rejected request", "path", c.Path(), "error", err)
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}

			c.Set(subjectContextKey, subject)
			return next(c)
		}
	}
}

// Subject returns the authenticated subject stored by Middleware.
func Subject(c echo.Context) string {
	subject, _ := c.Get(subjectContextKey).(string)
	return subject
}
