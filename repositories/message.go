//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"messenger-lab/domain"
)

type IMessageRepository interface {
	Append(conversationKey string, message domain.Message) error
	List(conversationKey string) ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger

	mu       sync.Mutex
	lastNano int64
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) IMessageRepository {
	return &MessageRepository{db: db, log: log}
}

// messageRecord is the persisted form of a message inside a conversation.
type messageRecord struct {
	ID     string `json:"id"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
	At     int64  `json:"at"`
}

// messageKey formats "msg:{conversationKey}:{timestamp_padded}:{uuid}" so that:
//  1. A prefix scan per conversation returns messages in chronological order
//     (19-digit zero padding keeps lexicographic order == numeric order).
//  2. The UUID suffix keeps keys unique.
func messageKey(conversationKey string, message domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		conversationKey,
		message.At.UnixNano(),
		message.ID,
	))
}

// stamp returns the message with a strictly increasing timestamp. Two
// appends landing in the same nanosecond would otherwise order by the
// random UUID suffix instead of insertion order.
func (m *MessageRepository) stamp(message domain.Message) domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	nano := message.At.UnixNano()
	if nano <= m.lastNano {
		nano = m.lastNano + 1
		message.At = time.Unix(0, nano).UTC()
	}
	m.lastNano = nano
	return message
}

// Append persists one message under its conversation. Append-only: existing
// entries are never touched.
func (m *MessageRepository) Append(conversationKey string, message domain.Message) error {
	message = m.stamp(message)

	data, err := json.Marshal(messageRecord{
		ID:     message.ID.String(),
		Sender: message.Sender,
		Text:   message.Text,
		At:     message.At.UnixNano(),
	})
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(conversationKey, message), data)
	})
}

// List returns the full stored sequence for a conversation, oldest first.
// An unknown conversation yields an empty slice, not an error. Entries that
// no longer decode are skipped with a warning rather than failing the
// whole listing.
func (m *MessageRepository) List(conversationKey string) ([]domain.Message, error) {
	type rawEntry struct {
		key string
		val []byte
	}
	var raw []rawEntry

	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("msg:" + conversationKey + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				raw = append(raw, rawEntry{
					key: string(item.Key()),
					val: append([]byte(nil), val...),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, entry := range raw {
		var record messageRecord
		if err := json.Unmarshal(entry.val, &record); err != nil {
			m.log.Warn("skipping undecodable message record", "key", entry.key, "error", err)
			continue
		}
		id, err := uuid.Parse(record.ID)
		if err != nil {
			m.log.Warn("skipping undecodable message record", "key", entry.key, "error", err)
			continue
		}
		messages = append(messages, domain.Message{
			ID:     id,
			Sender: record.Sender,
			Text:   record.Text,
			At:     time.Unix(0, record.At).UTC(),
		})
	}
	return messages, nil
}
