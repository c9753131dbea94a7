package auth

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// refreshToken exchanges a refresh token for a new access token. Refresh
// is best effort: any failure reports absent so the caller falls through
// to the full device flow.
func refreshToken(ctx context.Context, client *http.Client, clientID, tokenEndpoint string, prev TokenRecord) (TokenRecord, bool) {
	if prev.RefreshToken == "" {
		return TokenRecord{}, false
	}
	cfg := oauth2.Config{
		ClientID: clientID,
		Endpoint: oauth2.Endpoint{TokenURL: tokenEndpoint},
	}
	if client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	}
	// Expiry in the past forces the token source to hit the endpoint.
	src := cfg.TokenSource(ctx, &oauth2.Token{
		RefreshToken: prev.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	})
	refreshed, err := src.Token()
	if err != nil {
		return TokenRecord{}, false
	}
	return recordFromOAuth2Token(refreshed, prev), true
}

// recordFromOAuth2Token converts a token response into a record, carrying
// over the previous refresh and ID tokens when the server did not rotate
// them.
func recordFromOAuth2Token(tok *oauth2.Token, prev TokenRecord) TokenRecord {
	rec := TokenRecord{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    tok.ExpiresIn,
		IDToken:      prev.IDToken,
	}
	if rec.RefreshToken == "" {
		rec.RefreshToken = prev.RefreshToken
	}
	if idToken, ok := tok.Extra("id_token").(string); ok && idToken != "" {
		rec.IDToken = idToken
	}
	if rec.ExpiresIn <= 0 && !tok.Expiry.IsZero() {
		rec.ExpiresIn = int64(time.Until(tok.Expiry).Round(time.Second) / time.Second)
	}
	return rec
}
