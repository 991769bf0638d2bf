package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"golang.org/x/oauth2"
)

const (
	dbFileName    = "session.db"
	bucketSession = "session" // key: "current" -> Credentials JSON
	keyCurrent    = "current"
)

// Credentials is what a sign-in leaves behind on disk.
type Credentials struct {
	Token     *oauth2.Token `json:"token"`
	IDToken   string        `json:"id_token,omitempty"`
	Username  string        `json:"username,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store persists the current credentials in a bbolt file, owner-only.
type Store struct {
	db *bbolt.DB
}

// OpenStore opens (creating if needed) the session database in dir.
func OpenStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dir, dbFileName), 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSession))
		return err
	}); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Save(c Credentials) error {
	if c.Token == nil || c.Token.AccessToken == "" {
		return ErrEmptyToken
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	data, err := json.Marshal(&c)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketSession)).Put([]byte(keyCurrent), data)
	})
}

// Load returns the stored credentials, or nil when signed out.
func (s *Store) Load() (*Credentials, error) {
	var c *Credentials

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketSession)).Get([]byte(keyCurrent))
		if data == nil {
			return nil
		}

		c = &Credentials{}
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse credentials: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the stored credentials. Deleting nothing is fine.
func (s *Store) Delete() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketSession)).Delete([]byte(keyCurrent))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
