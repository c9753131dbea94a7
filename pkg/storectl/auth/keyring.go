package auth

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/zalando/go-keyring"
)

const keyringService = "storectl"

// KeyringStore keeps the token record in the OS keychain instead of a
// file. The stored secret is the same JSON document the file store writes.
type KeyringStore struct {
	Service string
	Key     string

	now func() time.Time
}

func NewKeyringStore(key string) *KeyringStore {
	return &KeyringStore{Service: keyringService, Key: key, now: time.Now}
}

func (s *KeyringStore) Load() (TokenRecord, bool) {
	secret, err := keyring.Get(s.Service, s.Key)
	if err != nil {
		return TokenRecord{}, false
	}
	return decodeRecord([]byte(secret))
}

func (s *KeyringStore) LoadIfValid(now time.Time) (TokenRecord, bool) {
	rec, ok := s.Load()
	if !ok || !rec.ValidAt(now) {
		return TokenRecord{}, false
	}
	return rec, true
}

func (s *KeyringStore) Save(rec TokenRecord) (TokenRecord, error) {
	clock := s.now
	if clock == nil {
		clock = time.Now
	}
	rec = stampRecord(rec, clock())
	content, err := json.Marshal(rec)
	if err != nil {
		return rec, err
	}
	return rec, keyring.Set(s.Service, s.Key, string(content))
}

func (s *KeyringStore) Clear() error {
	err := keyring.Delete(s.Service, s.Key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
