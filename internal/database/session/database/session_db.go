package database

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/triviall-games/triviall/internal/byteutil"
	"github.com/triviall-games/triviall/internal/database"
	"github.com/triviall-games/triviall/internal/database/session/model"

	bolt "go.etcd.io/bbolt"
)

const (
	bucket     = "sessions"
	sessionKey = "session_"
)

var ErrNotFound = fmt.Errorf("session not found")

type DB struct {
	mtx sync.RWMutex

	conn *database.DB
	ttl  time.Duration
}

// New opens the session bucket. A non-positive ttl falls back to the default
// resume window.
func New(conn *database.DB, ttl time.Duration) (*DB, error) {
	if ttl <= 0 {
		ttl = model.TTL
	}

	db := &DB{conn: conn, ttl: ttl}
	if err := db.conn.DB.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("serialize bucket error: %w", err)
	}

	return db, nil
}

func (db *DB) Save(playerName string, s model.Session) error {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	if err := db.conn.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		bytes, err := json.Marshal(&s)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		return b.Put(byteutil.PrefixedKey(sessionKey, playerName), bytes)
	}); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	return nil
}

// Fetch loads the saved session for a player. A session past its resume
// window is deleted in the same transaction and reported as not found.
func (db *DB) Fetch(playerName string, now time.Time) (model.Session, error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	var s model.Session
	if err := db.conn.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		key := byteutil.PrefixedKey(sessionKey, playerName)

		bytes := b.Get(key)
		if bytes == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(bytes, &s); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}
		if now.Sub(s.SavedAt) > db.ttl {
			if err := b.Delete(key); err != nil {
				return fmt.Errorf("delete expired session: %w", err)
			}
			return ErrNotFound
		}
		return nil
	}); err != nil {
		return model.Session{}, err
	}

	return s, nil
}

func (db *DB) Delete(playerName string) error {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	if err := db.conn.DB.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Delete(byteutil.PrefixedKey(sessionKey, playerName))
	}); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	return nil
}
