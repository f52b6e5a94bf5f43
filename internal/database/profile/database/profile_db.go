package database

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/triviall-games/triviall/internal/byteutil"
	"github.com/triviall-games/triviall/internal/cache"
	"github.com/triviall-games/triviall/internal/database"
	"github.com/triviall-games/triviall/internal/database/profile/model"

	bolt "go.etcd.io/bbolt"
)

const (
	bucket     = "profiles"
	profileKey = "profile_"
	statsKey   = "stats_"
)

var ErrNotFound = fmt.Errorf("profile not found")

type DB struct {
	mtx sync.RWMutex

	conn  *database.DB
	cache cache.Cache
}

func New(conn *database.DB, cache cache.Cache) (*DB, error) {
	db := &DB{conn: conn, cache: cache}
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

func (db *DB) SaveProfile(p model.Profile) error {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	if err := db.conn.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		bytes, err := json.Marshal(&p)
		if err != nil {
			return fmt.Errorf("marshal profile: %w", err)
		}
		return b.Put(byteutil.PrefixedKey(profileKey, p.Name), bytes)
	}); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	db.cache.Add(profileKey+p.Name, p)

	return nil
}

func (db *DB) FetchProfile(name string) (model.Profile, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()

	if v, ok := db.cache.Get(profileKey + name); ok {
		if p, ok := v.(model.Profile); ok {
			return p, nil
		}
	}

	var p model.Profile
	if err := db.conn.DB.View(func(tx *bolt.Tx) error {
		bytes := tx.Bucket([]byte(bucket)).Get(byteutil.PrefixedKey(profileKey, name))
		if bytes == nil {
			return ErrNotFound
		}
		return json.Unmarshal(bytes, &p)
	}); err != nil {
		return model.Profile{}, err
	}

	return p, nil
}

func (db *DB) FetchStats(name string) (model.LifetimeStats, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()

	var s model.LifetimeStats
	if err := db.conn.DB.View(func(tx *bolt.Tx) error {
		bytes := tx.Bucket([]byte(bucket)).Get(byteutil.PrefixedKey(statsKey, name))
		if bytes == nil {
			return ErrNotFound
		}
		return json.Unmarshal(bytes, &s)
	}); err != nil {
		return model.LifetimeStats{}, err
	}

	return s, nil
}

// RecordResult folds one finished game into the lifetime stats, creating the
// default aggregate on first use.
func (db *DB) RecordResult(name string, r model.GameResult) (model.LifetimeStats, error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	var next model.LifetimeStats
	if err := db.conn.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		key := byteutil.PrefixedKey(statsKey, name)

		prev := model.DefaultLifetimeStats()
		if bytes := b.Get(key); bytes != nil {
			if err := json.Unmarshal(bytes, &prev); err != nil {
				return fmt.Errorf("unmarshal stats: %w", err)
			}
		}

		next = prev.Merge(r)
		bytes, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		return b.Put(key, bytes)
	}); err != nil {
		return model.LifetimeStats{}, fmt.Errorf("update transaction: %w", err)
	}

	return next, nil
}
