package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type AppService struct {
	client *Client
}

func (c *Client) Apps() *AppService {
	return &AppService{client: c}
}

type LatestVersionInfo struct {
	VersionCode int64  `json:"version_code"`
	VersionName string `json:"version_name"`
	Size        int64  `json:"size"`
}

type AppListItem struct {
	PackageName   string             `json:"package_name"`
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	IconURL       string             `json:"icon_url"`
	LatestVersion *LatestVersionInfo `json:"latest_version,omitempty"`
}

type AppVersionInfo struct {
	VersionCode int64  `json:"version_code"`
	VersionName string `json:"version_name"`
	ApkURL      string `json:"apk_url"`
	Size        int64  `json:"size"`
	SHA256      string `json:"sha256"`
	MinSDK      int64  `json:"min_sdk"`
	UploadedAt  string `json:"uploaded_at"`
}

type AppDetail struct {
	PackageName string           `json:"package_name"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	IconURL     string           `json:"icon_url"`
	Versions    []AppVersionInfo `json:"versions"`
}

type appsListResponse struct {
	Apps []AppListItem `json:"apps"`
}

func (s *AppService) List(ctx context.Context) ([]AppListItem, error) {
	var resp appsListResponse
	if err := s.client.do(ctx, http.MethodGet, "api/apps", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Apps, nil
}

func (s *AppService) Get(ctx context.Context, packageName string) (*AppDetail, error) {
	var detail AppDetail
	endpoint := fmt.Sprintf("api/apps/%s", url.PathEscape(packageName))
	if err := s.client.do(ctx, http.MethodGet, endpoint, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *AppService) Delete(ctx context.Context, packageName string) error {
	endpoint := fmt.Sprintf("api/admin/apps/%s", url.PathEscape(packageName))
	return s.client.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (s *AppService) DeleteVersion(ctx context.Context, packageName string, versionCode int64) error {
	endpoint := fmt.Sprintf("api/admin/apps/%s/versions/%d", url.PathEscape(packageName), versionCode)
	return s.client.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// Health probes the store's unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "health", nil, nil)
}
