package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("artifact bytes"), 0o644))
	return path
}

func TestPublishCommand(t *testing.T) {
	apk := writeArtifact(t, "app-release.apk")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/admin/apps", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "My App", r.FormValue("name"))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"package_name": "com.example.app",
			"name":         "My App",
			"icon_url":     "/api/apps/com.example.app/icon",
			"version": map[string]any{
				"version_code": 8,
				"version_name": "1.3.0",
				"size":         14,
			},
		})
	}))
	defer server.Close()

	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: buf})
	root.SetArgs([]string{
		"--server", server.URL,
		"--token", "secret",
		"publish", apk,
		"--name", "My App",
	})
	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "Published com.example.app 1.3.0 (version code 8)")
}

func TestPublishCommandJSONOutput(t *testing.T) {
	apk := writeArtifact(t, "app.apk")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"package_name": "com.example.app",
			"version":      map[string]any{"version_code": 8, "version_name": "1.3.0"},
		})
	}))
	defer server.Close()

	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: buf})
	root.SetArgs([]string{
		"--server", server.URL,
		"--token", "secret",
		"-o", "json",
		"publish", apk,
	})
	require.NoError(t, root.Execute())

	var result map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "com.example.app", result["package_name"])
}

func TestPublishCommandRejectsUnknownExtension(t *testing.T) {
	path := writeArtifact(t, "app.zip")

	root := NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: &bytes.Buffer{}})
	root.SetArgs([]string{"--server", "http://127.0.0.1:1", "--token", "x", "publish", path})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported artifact type")
}

func TestPublishCommandRejectsMissingFile(t *testing.T) {
	root := NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: &bytes.Buffer{}})
	root.SetArgs([]string{
		"--server", "http://127.0.0.1:1", "--token", "x",
		"publish", filepath.Join(t.TempDir(), "missing.apk"),
	})
	require.Error(t, root.Execute())
}

func TestPublishCommandErrorMessages(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		want       []string
	}{
		{
			name:       "unauthorized",
			statusCode: http.StatusUnauthorized,
			body:       `{"error": "token signature invalid"}`,
			want:       []string{"authentication rejected", "auth logout"},
		},
		{
			name:       "forbidden",
			statusCode: http.StatusForbidden,
			body:       `{"error": "admin role required"}`,
			want:       []string{"permission denied", "admin role"},
		},
		{
			name:       "conflict",
			statusCode: http.StatusConflict,
			body:       `{"error": "version code 8 already exists"}`,
			want:       []string{"version already published", "versionCode"},
		},
		{
			name:       "too large",
			statusCode: http.StatusRequestEntityTooLarge,
			body:       `{"error": "max upload size is 200MB"}`,
			want:       []string{"artifact too large", "200MB"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apk := writeArtifact(t, "app.apk")
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			root := NewRootCommand(Config{ConfigPath: configPathForTest(t), OutputWriter: &bytes.Buffer{}})
			root.SetArgs([]string{"--server", server.URL, "--token", "secret", "publish", apk})
			err := root.Execute()
			require.Error(t, err)
			for _, want := range tt.want {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestValidateArtifact(t *testing.T) {
	t.Run("accepts apk and aab", func(t *testing.T) {
		require.NoError(t, validateArtifact(writeArtifact(t, "a.apk")))
		require.NoError(t, validateArtifact(writeArtifact(t, "b.aab")))
		require.NoError(t, validateArtifact(writeArtifact(t, "c.APK")))
	})

	t.Run("rejects other extensions", func(t *testing.T) {
		err := validateArtifact(writeArtifact(t, "a.ipa"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported artifact type")
	})

	t.Run("rejects directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "dir.apk")
		require.NoError(t, os.Mkdir(dir, 0o755))
		err := validateArtifact(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a directory")
	})

	t.Run("rejects empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.apk")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		err := validateArtifact(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is empty")
	})
}
