package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteObjectJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteObject(buf, FormatJSON, map[string]any{"package_name": "com.example.app", "count": 42})
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "com.example.app", result["package_name"])
	assert.True(t, strings.HasSuffix(buf.String(), "\n"), "output should end with newline")
	assert.Contains(t, buf.String(), "  ", "JSON should be indented")
}

func TestWriteObjectYAML(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteObject(buf, FormatYAML, map[string]string{"name": "Example"})
	require.NoError(t, err)

	var result map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "Example", result["name"])
}

func TestWriteObjectTableFormats(t *testing.T) {
	for _, format := range []Format{FormatTable, FormatWide} {
		t.Run(string(format), func(t *testing.T) {
			err := WriteObject(&bytes.Buffer{}, format, struct{}{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "requires a specific formatter")
		})
	}
}

func TestWriteObjectUnknownFormat(t *testing.T) {
	err := WriteObject(&bytes.Buffer{}, Format("invalid"), struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format: invalid")
}
