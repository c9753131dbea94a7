// Package client is a thin HTTP client for the Lellostore API.
package client
