package session

import (
	"fmt"

	"github.com/dgrijalva/jwt-go"
)

// DecodeClaims reads the claims of a bearer token without verifying its
// signature. The token is opaque to this client; claims are only used to
// label log lines and request locals.
func DecodeClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token claims: %w", err)
	}
	return claims, nil
}

// Subject returns the user identifier carried by claims, checking the
// common claim names.
func Subject(claims jwt.MapClaims) string {
	for _, key := range []string{"user_id", "sub", "id"} {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
