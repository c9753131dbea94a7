// Package auth obtains and caches bearer tokens for the storectl CLI
// using the OAuth2 device authorization grant, with silent refresh and
// token caching via file or keychain storage.
package auth
