package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the signed-in identity shown in the header.
type User struct {
	Username  string
	Subject   string
	Email     string
	ExpiresAt *time.Time
}

var usernameClaims = []string{"cognito:username", "username", "preferred_username", "email", "sub"}

// UserFromToken reads identity claims from a JWT without verifying it; the
// backend does the verification. Opaque tokens yield fallback as username.
func UserFromToken(raw, fallback string) User {
	u := User{Username: fallback}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return u
	}

	for _, k := range usernameClaims {
		if v, ok := claims[k].(string); ok && v != "" {
			u.Username = v
			break
		}
	}
	if sub, err := claims.GetSubject(); err == nil {
		u.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		u.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		u.ExpiresAt = &t
	}
	return u
}

// Claims returns the decoded JWT payload, or nil for opaque tokens.
func Claims(raw string) map[string]interface{} {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil
	}
	return claims
}

// stripBearer drops a leading "Bearer" scheme. A scheme with no token is empty.
func stripBearer(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.Fields(s)
	if len(fields) == 0 || !strings.EqualFold(fields[0], "bearer") {
		return s
	}
	return strings.TrimSpace(s[len(fields[0]):])
}
