package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/toplist/internal/shared"
	"go.etcd.io/bbolt"
)

var sessionsBucket = []byte("sessions")

type boltRecord struct {
	Values    Values    `json:"values"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BoltStore is a [Store] backed by a bbolt database file.
type BoltStore struct {
	db  *bbolt.DB
	now func() time.Time
}

var (
	_ Store   = (*BoltStore)(nil)
	_ Sweeper = (*BoltStore)(nil)
)

// NewBoltStore returns a store using db, creating the sessions bucket if needed.
func NewBoltStore(db *bbolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating sessions bucket: %w", err)
	}
	return &BoltStore{db: db, now: time.Now}, nil
}

// OpenBoltStore opens (or creates) the bbolt file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}

	store, err := NewBoltStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Load(_ context.Context, id string) (Values, error) {
	var rec boltRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(sessionsBucket).Get([]byte(id))
		if data == nil {
			return shared.ErrSessionNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}

	if !s.now().Before(rec.ExpiresAt) {
		if err := s.Delete(context.Background(), id); err != nil {
			return nil, err
		}
		return nil, shared.ErrSessionNotFound
	}
	return rec.Values.Clone(), nil
}

func (s *BoltStore) Save(_ context.Context, id string, values Values, expiresAt time.Time) error {
	data, err := json.Marshal(boltRecord{Values: values, ExpiresAt: expiresAt.UTC()})
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(id), data)
	})
}

func (s *BoltStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete([]byte(id))
	})
}

// DeleteExpired removes every session that expired at or before now.
func (s *BoltStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	n := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		var expired [][]byte
		c := tx.Bucket(sessionsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec boltRecord
			if err := json.Unmarshal(v, &rec); err != nil || !now.Before(rec.ExpiresAt) {
				expired = append(expired, append([]byte(nil), k...))
			}
		}
		for _, k := range expired {
			if err := tx.Bucket(sessionsBucket).Delete(k); err != nil {
				return err
			}
		}
		n = len(expired)
		return nil
	})
	return n, err
}
