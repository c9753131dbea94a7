package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

type UploadRequest struct {
	// Path to the APK or AAB on disk.
	Path string
	// Name overrides the display name extracted from the artifact.
	Name string
	// Description overrides the store listing description.
	Description string
}

type UploadResponse struct {
	PackageName string         `json:"package_name"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	IconURL     string         `json:"icon_url"`
	Version     AppVersionInfo `json:"version"`
}

// Upload publishes an artifact as a multipart form. The file is streamed
// from disk, never buffered whole in memory.
func (s *AppService) Upload(ctx context.Context, upload UploadRequest) (*UploadResponse, error) {
	if upload.Path == "" {
		return nil, errors.New("file path is required")
	}
	file, err := os.Open(upload.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		part, err := form.CreateFormFile("file", filepath.Base(upload.Path))
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if upload.Name != "" {
			if err := form.WriteField("name", upload.Name); err != nil {
				_ = pw.CloseWithError(err)
				return
			}
		}
		if upload.Description != "" {
			if err := form.WriteField("description", upload.Description); err != nil {
				_ = pw.CloseWithError(err)
				return
			}
		}
		_ = pw.CloseWithError(form.Close())
	}()

	c := s.client
	fullURL, err := c.endpointURL("api/admin/apps")
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, pr)
	if err != nil {
		return nil, err
	}
	c.setCommonHeaders(req)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.upload.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}
	var result UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}
