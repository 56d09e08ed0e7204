package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.etcd.io/bbolt"

	"github.com/nkiryanov/streamcat/internal/client/models"
)

var bucketSession = []byte("session")

// BoltStore is a Store backed by a bbolt database file. Every multi-key
// mutation runs inside a single Update transaction, which is what makes the
// triple atomic on disk.
type BoltStore struct {
	db *bbolt.DB
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore wraps an already-open bbolt database.
func NewBoltStore(db *bbolt.DB) *BoltStore {
	return &BoltStore{db: db}
}

// OpenBoltStore opens (creating if needed) the bbolt database at path and
// returns a store over it.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	return NewBoltStore(db), nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Write(ctx context.Context, data Data) error {
	userJSON, err := json.Marshal(data.User)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketSession)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(KeyToken), []byte(data.Token)); err != nil {
			return err
		}
		if err := b.Put([]byte(KeyUser), userJSON); err != nil {
			return err
		}
		return b.Put([]byte(KeyRememberMe), []byte(strconv.FormatBool(data.RememberMe)))
	})
}

func (s *BoltStore) Read(ctx context.Context) (*Data, error) {
	var data *Data
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return nil
		}
		tok := b.Get([]byte(KeyToken))
		userJSON := b.Get([]byte(KeyUser))
		// A torn pair reads as empty rather than surfacing half a session.
		if len(tok) == 0 || len(userJSON) == 0 {
			return nil
		}
		var user models.User
		if err := json.Unmarshal(userJSON, &user); err != nil {
			return fmt.Errorf("decoding user: %w", err)
		}
		remember, _ := strconv.ParseBool(string(b.Get([]byte(KeyRememberMe))))
		data = &Data{Token: string(tok), User: &user, RememberMe: remember}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *BoltStore) UpdateUser(ctx context.Context, user *models.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil || len(b.Get([]byte(KeyToken))) == 0 {
			return ErrNoSession
		}
		return b.Put([]byte(KeyUser), userJSON)
	})
}

func (s *BoltStore) Clear(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return nil
		}
		for _, key := range []string{KeyToken, KeyUser, KeyRememberMe} {
			if err := b.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Token(ctx context.Context) (string, error) {
	var tok string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return nil
		}
		tok = string(b.Get([]byte(KeyToken)))
		return nil
	})
	if err != nil {
		return "", err
	}
	return tok, nil
}
