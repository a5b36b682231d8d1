//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"

	"github.com/dgraph-io/badger/v4"
)

const sessionKey = "session:current"

// Credentials is the persisted session entry: the raw username/password
// pair, kept so a restart can replay authentication.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ISessionRepository interface {
	Save(credentials Credentials) error
	// Load returns (credentials, true) when a session is persisted,
	// (zero, false) when none is.
	Load() (Credentials, bool, error)
	Clear() error
}

type SessionRepository struct {
	db *badger.DB
}

func NewSessionRepository(db *badger.DB) ISessionRepository {
	return &SessionRepository{db: db}
}

func (s SessionRepository) Save(credentials Credentials) error {
	data, err := json.Marshal(credentials)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(sessionKey), data)
	})
}

func (s SessionRepository) Load() (Credentials, bool, error) {
	var credentials Credentials
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &credentials)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return Credentials{}, false, nil
	}
	if err != nil {
		return Credentials{}, false, err
	}
	return credentials, true, nil
}

func (s SessionRepository) Clear() error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(sessionKey))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
