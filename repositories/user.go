//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"messenger-lab/domain"
	"messenger-lab/errors"
)

const userPrefix = "user:"

type IUserRepository interface {
	CreateUser(user domain.User) error
	GetUser(username string) (domain.User, error)
	ListUsernames() ([]string, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// userRecord mirrors the persisted layout: username -> {password, lastSeen}.
// LastSeen is kept as unix milliseconds.
type userRecord struct {
	Password string `json:"password"`
	LastSeen int64  `json:"lastSeen"`
}

// CreateUser persists a new user. The uniqueness check runs inside the
// same transaction as the write, so two racing registrations cannot both
// succeed.
func (u UserRepository) CreateUser(user domain.User) error {
	data, err := json.Marshal(userRecord{
		Password: user.Password,
		LastSeen: user.LastSeen.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	return u.db.Update(func(txn *badger.Txn) error {
		key := []byte(userPrefix + user.Username)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUsernameTaken
		}
		return txn.Set(key, data)
	})
}

// GetUser retrieves a persisted user. A missing key surfaces as
// badger.ErrKeyNotFound and is mapped to a credential failure upstream.
func (u UserRepository) GetUser(username string) (domain.User, error) {
	var record userRecord

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userPrefix + username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return domain.User{}, err
	}

	return domain.User{
		Username: username,
		Password: record.Password,
		LastSeen: time.UnixMilli(record.LastSeen).UTC(),
	}, nil
}

// ListUsernames returns every persisted username in key order, which Badger
// guarantees to be lexicographic and therefore stable across calls.
func (u UserRepository) ListUsernames() ([]string, error) {
	var usernames []string

	err := u.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(userPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			usernames = append(usernames, strings.TrimPrefix(key, userPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return usernames, nil
}
