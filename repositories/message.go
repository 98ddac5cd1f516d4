//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"whatsapp-clone/domain/chat"
	"whatsapp-clone/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const messagePrefix = "msg:"

type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	GetMessages(chatID chat.ChatID, cursor *string) ([]DiskMessage, *string, error)
	LastMessage(chatID chat.ChatID) (*DiskMessage, error)
	DeleteMessages(chatID chat.ChatID) error
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

type DiskMessage struct {
	ID              uuid.UUID
	Chat            chat.ChatID
	Author          string
	Content         string
	PhotoURL        string
	ReceiverHasRead bool
	At              time.Time
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{chat_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func (m MessageRepository) StoreMessage(message DiskMessage) error {
	key := fmt.Sprintf("%s%s:%019d:%s",
		messagePrefix,
		message.Chat,
		message.At.UnixNano(),
		message.ID,
	)
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), marshalMessage(message))
	})
}

// GetMessages returns a page of messages of a chat, newest first.
// The returned cursor points to the oldest message of the page and is nil when
// there is nothing older left to read.
func (m MessageRepository) GetMessages(chatID chat.ChatID, cursor *string) ([]DiskMessage, *string, error) {
	if cursor != nil && !isValidCursor(*cursor) {
		return nil, nil, errors.ErrInvalidCursor
	}

	var messages []DiskMessage
	var lastKey string
	more := false
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := messageChatPrefix(chatID)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Reverse iteration starts from the greatest key <= seekKey
			seekKey = append(bytes.Clone(prefix), 0xFF)
		default:
			seekKey = append(bytes.Clone(prefix), []byte(*cursor)...)
		}

		it.Seek(seekKey)

		// The cursor message itself was part of the previous page
		if cursor != nil && it.ValidForPrefix(prefix) && bytes.Equal(it.Item().Key(), seekKey) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(messages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				more = true
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefix):])
			err := item.Value(func(value []byte) error {
				message, err := unmarshalMessage(value)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if !more {
		return messages, nil, nil
	}
	return messages, &lastKey, nil
}

// LastMessage returns the most recent message of the chat, or nil when the chat is empty.
func (m MessageRepository) LastMessage(chatID chat.ChatID) (*DiskMessage, error) {
	var last *DiskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := messageChatPrefix(chatID)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		it.Seek(append(bytes.Clone(prefix), 0xFF))
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		return it.Item().Value(func(value []byte) error {
			message, err := unmarshalMessage(value)
			if err != nil {
				return err
			}
			last = &message
			return nil
		})
	})
	return last, err
}

// DeleteMessages drops the whole thread of a chat.
func (m MessageRepository) DeleteMessages(chatID chat.ChatID) error {
	if err := m.db.DropPrefix(messageChatPrefix(chatID)); err != nil {
		return fmt.Errorf("drop messages of chat %s: %w", chatID, err)
	}
	return nil
}

func messageChatPrefix(chatID chat.ChatID) []byte {
	return []byte(messagePrefix + chatID.String() + ":")
}

// isValidCursor checks the "{timestamp_padded}:{uuid}" shape of a cursor.
func isValidCursor(cursor string) bool {
	ts, id, ok := strings.Cut(cursor, ":")
	if !ok || len(ts) != 19 || strings.Trim(ts, "0123456789") != "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func marshalMessage(message DiskMessage) []byte {
	var e encoder
	e.putString(messageFieldID, message.ID.String())
	e.putString(messageFieldChat, message.Chat.String())
	e.putString(messageFieldAuthor, message.Author)
	e.putString(messageFieldContent, message.Content)
	e.putString(messageFieldPhotoURL, message.PhotoURL)
	e.putBool(messageFieldReceiverHasRead, message.ReceiverHasRead)
	e.putInt64(messageFieldAt, unixNano(message.At))
	return e.buf
}

func unmarshalMessage(data []byte) (DiskMessage, error) {
	var message DiskMessage
	err := decode(data, func(f field) error {
		var err error
		switch f.num {
		case messageFieldID:
			var id string
			if id, err = f.asString(); err == nil {
				message.ID, err = uuid.Parse(id)
			}
		case messageFieldChat:
			var id string
			id, err = f.asString()
			message.Chat = chat.ChatID(id)
		case messageFieldAuthor:
			message.Author, err = f.asString()
		case messageFieldContent:
			message.Content, err = f.asString()
		case messageFieldPhotoURL:
			message.PhotoURL, err = f.asString()
		case messageFieldReceiverHasRead:
			message.ReceiverHasRead, err = f.asBool()
		case messageFieldAt:
			message.At, err = fromUnixNano(f.asInt64())
		}
		return err
	})
	if err != nil {
		return DiskMessage{}, fmt.Errorf("unmarshal message: %w", err)
	}
	return message, nil
}
