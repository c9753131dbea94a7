package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"

type deviceCodeResponse struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	ExpiresIn               int64  `json:"expires_in"`
	Interval                int64  `json:"interval"`
}

// postForm issues a URL-encoded POST and decodes the JSON response into
// out. Non-2xx responses yield an *HTTPError carrying the raw body.
func postForm(ctx context.Context, client *http.Client, endpoint string, values url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func requestDeviceCode(ctx context.Context, client *http.Client, endpoint, clientID string, scopes []string) (*deviceCodeResponse, error) {
	values := url.Values{}
	values.Set("client_id", clientID)
	if len(scopes) > 0 {
		values.Set("scope", strings.Join(scopes, " "))
	}
	var payload deviceCodeResponse
	if err := postForm(ctx, client, endpoint, values, &payload); err != nil {
		return nil, fmt.Errorf("device authorization failed: %w", err)
	}
	if payload.DeviceCode == "" {
		return nil, errors.New("device authorization response missing device_code")
	}
	return &payload, nil
}

func pollDeviceToken(ctx context.Context, client *http.Client, endpoint, clientID, deviceCode string) (TokenRecord, error) {
	values := url.Values{}
	values.Set("grant_type", deviceGrantType)
	values.Set("device_code", deviceCode)
	values.Set("client_id", clientID)

	var rec TokenRecord
	if err := postForm(ctx, client, endpoint, values, &rec); err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			return TokenRecord{}, classifyOAuthError(httpErr)
		}
		return TokenRecord{}, err
	}
	if rec.AccessToken == "" {
		// Some servers answer 200 with an OAuth error body.
		if raw, ok := rec.Extra("error"); ok {
			var code string
			_ = json.Unmarshal(raw, &code)
			if mapped := oauthErrorFromCode(code); mapped != nil {
				return TokenRecord{}, mapped
			}
			return TokenRecord{}, fmt.Errorf("device token error: %s", code)
		}
		return TokenRecord{}, errors.New("token response missing access_token")
	}
	return rec, nil
}

// classifyOAuthError recovers the OAuth error code from an error response.
// The standard {"error": "..."} field is preferred; substring matching on
// the raw body is the fallback for non-conforming servers.
func classifyOAuthError(httpErr *HTTPError) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(httpErr.Body), &payload); err == nil && payload.Error != "" {
		if mapped := oauthErrorFromCode(payload.Error); mapped != nil {
			return mapped
		}
		return httpErr
	}
	switch {
	case strings.Contains(httpErr.Body, "authorization_pending"):
		return errAuthorizationPending
	case strings.Contains(httpErr.Body, "slow_down"):
		return errSlowDown
	case strings.Contains(httpErr.Body, "access_denied"):
		return ErrAuthorizationDenied
	case strings.Contains(httpErr.Body, "expired"):
		return ErrAuthorizationExpired
	}
	return httpErr
}

func oauthErrorFromCode(code string) error {
	switch code {
	case "authorization_pending":
		return errAuthorizationPending
	case "slow_down":
		return errSlowDown
	case "access_denied":
		return ErrAuthorizationDenied
	}
	if strings.Contains(code, "expired") {
		return ErrAuthorizationExpired
	}
	return nil
}
