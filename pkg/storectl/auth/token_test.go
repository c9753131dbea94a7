package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens", "default.json")
	store := NewFileStore(path)

	before := time.Now().Unix()
	saved, err := store.Save(TokenRecord{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		ExpiresIn:    120,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, saved.ExpiresAt, before+120)
	require.LessOrEqual(t, saved.ExpiresAt, time.Now().Unix()+120)

	loaded, ok := store.Load()
	require.True(t, ok)
	require.Equal(t, "access", loaded.AccessToken)
	require.Equal(t, "refresh", loaded.RefreshToken)
	require.Equal(t, "Bearer", loaded.TokenType)
	require.Equal(t, int64(120), loaded.ExpiresIn)
	require.Equal(t, saved.ExpiresAt, loaded.ExpiresAt)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreSaveDefaultsExpiresIn(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "token.json"))
	saved, err := store.Save(TokenRecord{AccessToken: "access"})
	require.NoError(t, err)
	require.InDelta(t, time.Now().Unix()+3600, saved.ExpiresAt, 2)
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "token.json"))
	_, err := store.Save(TokenRecord{AccessToken: "first", RefreshToken: "r1"})
	require.NoError(t, err)
	_, err = store.Save(TokenRecord{AccessToken: "second"})
	require.NoError(t, err)

	loaded, ok := store.Load()
	require.True(t, ok)
	require.Equal(t, "second", loaded.AccessToken)
	require.Empty(t, loaded.RefreshToken)
}

func TestFileStoreLoadAbsent(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		store := NewFileStore(filepath.Join(dir, "nope.json"))
		_, ok := store.Load()
		require.False(t, ok)
	})

	t.Run("malformed content", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
		_, ok := NewFileStore(path).Load()
		require.False(t, ok)
	})

	t.Run("missing required fields", func(t *testing.T) {
		path := filepath.Join(dir, "partial.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"refresh_token":"r"}`), 0o600))
		_, ok := NewFileStore(path).Load()
		require.False(t, ok)
	})
}

func TestFileStoreLoadIfValidExpiryBuffer(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name      string
		expiresAt int64
		want      bool
	}{
		{"well before expiry", now.Unix() + 600, true},
		{"exactly at buffer", now.Add(tokenExpiryBuffer).Unix() + 1, true},
		{"inside buffer", now.Unix() + 30, false},
		{"already expired", now.Unix() - 10, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "token.json")
			content, err := json.Marshal(TokenRecord{AccessToken: "access", ExpiresAt: tc.expiresAt})
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, content, 0o600))

			_, ok := NewFileStore(path).LoadIfValid(now)
			require.Equal(t, tc.want, ok)
		})
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFileStore(path)

	require.NoError(t, store.Clear())

	_, err := store.Save(TokenRecord{AccessToken: "access"})
	require.NoError(t, err)
	require.NoError(t, store.Clear())
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))

	require.NoError(t, store.Clear())
}

func TestTokenRecordPassthroughFields(t *testing.T) {
	raw := []byte(`{"access_token":"access","expires_in":60,"token_type":"Bearer","scope":"openid profile","session_state":"abc"}`)
	var rec TokenRecord
	require.NoError(t, json.Unmarshal(raw, &rec))
	require.Equal(t, "access", rec.AccessToken)

	scope, ok := rec.Extra("scope")
	require.True(t, ok)
	require.JSONEq(t, `"openid profile"`, string(scope))

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	var round map[string]any
	require.NoError(t, json.Unmarshal(out, &round))
	require.Equal(t, "openid profile", round["scope"])
	require.Equal(t, "abc", round["session_state"])
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore("test-context")

	require.NoError(t, store.Clear())

	saved, err := store.Save(TokenRecord{AccessToken: "access", ExpiresIn: 300})
	require.NoError(t, err)
	require.Greater(t, saved.ExpiresAt, int64(0))

	loaded, ok := store.LoadIfValid(time.Now())
	require.True(t, ok)
	require.Equal(t, "access", loaded.AccessToken)

	require.NoError(t, store.Clear())
	_, ok = store.Load()
	require.False(t, ok)
}
