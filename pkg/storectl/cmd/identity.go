package cmd

import (
	"github.com/golang-jwt/jwt/v4"

	"github.com/lelloman/storectl/pkg/storectl/auth"
)

// resolveUserFromRecord extracts a display name from the cached token.
// The signature is not verified; the claims are used for display only.
func resolveUserFromRecord(rec auth.TokenRecord) string {
	token := rec.IDToken
	if token == "" {
		token = rec.AccessToken
	}
	if token == "" {
		return ""
	}
	parser := jwt.Parser{}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ""
	}
	if email, ok := claims["email"].(string); ok && email != "" {
		return email
	}
	if username, ok := claims["preferred_username"].(string); ok && username != "" {
		return username
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	return ""
}
