package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// tokenExpiryBuffer is the safety margin applied when deciding whether a
// cached access token is still usable. It covers clock skew and the time
// the consuming request itself takes.
const tokenExpiryBuffer = 60 * time.Second

// defaultExpiresIn is assumed when the server omits expires_in.
const defaultExpiresIn = 3600

// TokenRecord is the credential record persisted between invocations.
// Fields the CLI does not interpret (token_type, scope, ...) are carried
// through unchanged so the cache file mirrors what the server issued.
type TokenRecord struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	IDToken      string
	// ExpiresIn is the lifetime in seconds as issued by the server.
	ExpiresIn int64
	// ExpiresAt is the absolute expiry in epoch seconds. It is computed
	// locally at save time and never trusted from the server.
	ExpiresAt int64

	extra map[string]json.RawMessage
}

// Valid reports whether the record carries the required fields. Records
// failing this check are treated as absent, not as errors.
func (t TokenRecord) Valid() bool {
	return t.AccessToken != "" && t.ExpiresAt > 0
}

// ValidAt reports whether the record is valid and not within the expiry
// buffer of now.
func (t TokenRecord) ValidAt(now time.Time) bool {
	return t.Valid() && t.ExpiresAt >= now.Add(tokenExpiryBuffer).Unix()
}

// Expiry returns the absolute expiry time.
func (t TokenRecord) Expiry() time.Time {
	return time.Unix(t.ExpiresAt, 0)
}

// Extra returns a server-issued field the CLI does not interpret.
func (t TokenRecord) Extra(key string) (json.RawMessage, bool) {
	v, ok := t.extra[key]
	return v, ok
}

func (t TokenRecord) MarshalJSON() ([]byte, error) {
	out := map[string]json.RawMessage{}
	for k, v := range t.extra {
		out[k] = v
	}
	set := func(key string, value any) error {
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		out[key] = raw
		return nil
	}
	if err := set("access_token", t.AccessToken); err != nil {
		return nil, err
	}
	if err := set("expires_at", t.ExpiresAt); err != nil {
		return nil, err
	}
	optional := map[string]any{}
	if t.RefreshToken != "" {
		optional["refresh_token"] = t.RefreshToken
	}
	if t.TokenType != "" {
		optional["token_type"] = t.TokenType
	}
	if t.IDToken != "" {
		optional["id_token"] = t.IDToken
	}
	if t.ExpiresIn != 0 {
		optional["expires_in"] = t.ExpiresIn
	}
	for k, v := range optional {
		if err := set(k, v); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

func (t *TokenRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	take := func(key string, out any) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		delete(raw, key)
		return json.Unmarshal(v, out)
	}
	if err := take("access_token", &t.AccessToken); err != nil {
		return err
	}
	if err := take("refresh_token", &t.RefreshToken); err != nil {
		return err
	}
	if err := take("token_type", &t.TokenType); err != nil {
		return err
	}
	if err := take("id_token", &t.IDToken); err != nil {
		return err
	}
	if err := take("expires_in", &t.ExpiresIn); err != nil {
		return err
	}
	if err := take("expires_at", &t.ExpiresAt); err != nil {
		return err
	}
	if len(raw) > 0 {
		t.extra = raw
	}
	return nil
}

// Store persists at most one token record. Load and LoadIfValid fail soft:
// a missing, unreadable or corrupt record is reported as absent so callers
// fall through to re-authentication instead of surfacing cache problems.
type Store interface {
	Load() (TokenRecord, bool)
	LoadIfValid(now time.Time) (TokenRecord, bool)
	Save(rec TokenRecord) (TokenRecord, error)
	Clear() error
}

// FileStore keeps the token record as a single JSON file, readable only by
// the owning user.
type FileStore struct {
	Path string

	now func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path, now: time.Now}
}

func (s *FileStore) Load() (TokenRecord, bool) {
	content, err := os.ReadFile(s.Path)
	if err != nil {
		return TokenRecord{}, false
	}
	return decodeRecord(content)
}

func (s *FileStore) LoadIfValid(now time.Time) (TokenRecord, bool) {
	rec, ok := s.Load()
	if !ok || !rec.ValidAt(now) {
		return TokenRecord{}, false
	}
	return rec, true
}

// Save stamps the absolute expiry and replaces any previous record. The
// write goes through a temp file in the same directory so a crash never
// leaves a half-written cache behind.
func (s *FileStore) Save(rec TokenRecord) (TokenRecord, error) {
	rec = stampRecord(rec, s.clock()())
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return rec, err
	}
	content, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return rec, err
	}
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return rec, err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return rec, err
	}
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return rec, err
	}
	if err := tmp.Close(); err != nil {
		return rec, err
	}
	return rec, os.Rename(tmp.Name(), s.Path)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *FileStore) clock() func() time.Time {
	if s.now != nil {
		return s.now
	}
	return time.Now
}

func decodeRecord(content []byte) (TokenRecord, bool) {
	var rec TokenRecord
	if err := json.Unmarshal(content, &rec); err != nil {
		return TokenRecord{}, false
	}
	if !rec.Valid() {
		return TokenRecord{}, false
	}
	return rec, true
}

func stampRecord(rec TokenRecord, now time.Time) TokenRecord {
	expiresIn := rec.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}
	rec.ExpiresAt = now.Unix() + expiresIn
	return rec
}
