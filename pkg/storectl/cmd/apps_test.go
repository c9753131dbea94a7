package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeStore(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/apps", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"apps": []map[string]any{
				{
					"package_name": "com.example.app",
					"name":         "Example",
					"latest_version": map[string]any{
						"version_code": 7,
						"version_name": "1.2.0",
						"size":         2048,
					},
				},
			},
		})
	})
	mux.HandleFunc("/api/apps/com.example.app", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"package_name": "com.example.app",
			"name":         "Example",
			"description":  "An example app",
			"versions": []map[string]any{
				{"version_code": 7, "version_name": "1.2.0", "size": 2048, "min_sdk": 24, "uploaded_at": "2026-01-01T00:00:00Z"},
			},
		})
	})
	mux.HandleFunc("/api/admin/apps/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestAppsListTable(t *testing.T) {
	server := fakeStore(t)

	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: buf})
	root.SetArgs([]string{"--server", server.URL, "--token", "secret", "apps", "list"})
	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Contains(t, out, "PACKAGE")
	assert.Contains(t, out, "com.example.app")
	assert.Contains(t, out, "1.2.0")
}

func TestAppsListJSON(t *testing.T) {
	server := fakeStore(t)

	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: buf})
	root.SetArgs([]string{"--server", server.URL, "--token", "secret", "-o", "json", "apps", "list"})
	require.NoError(t, root.Execute())

	var apps []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &apps))
	require.Len(t, apps, 1)
	assert.Equal(t, "com.example.app", apps[0]["package_name"])
}

func TestAppsGet(t *testing.T) {
	server := fakeStore(t)

	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: buf})
	root.SetArgs([]string{"--server", server.URL, "--token", "secret", "apps", "get", "com.example.app"})
	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Contains(t, out, "Example (com.example.app)")
	assert.Contains(t, out, "An example app")
	assert.Contains(t, out, "VERSION_CODE")
	assert.Contains(t, out, "1.2.0")
}

func TestAppsDelete(t *testing.T) {
	server := fakeStore(t)

	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: buf})
	root.SetArgs([]string{"--server", server.URL, "--token", "secret", "apps", "delete", "com.example.app"})
	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "Deleted com.example.app")

	buf.Reset()
	root = NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: buf})
	root.SetArgs([]string{
		"--server", server.URL, "--token", "secret",
		"apps", "delete", "com.example.app", "--version-code", "7",
	})
	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "Deleted com.example.app version code 7")
}
