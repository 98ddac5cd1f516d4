//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"whatsapp-clone/domain/chat"
	"whatsapp-clone/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	chatPrefix   = "chat:"
	memberPrefix = "member:"
	pairPrefix   = "pair:"

	createChatAttempts = 3
)

type IChatRepository interface {
	CreateChat(users []string) (chat.Chat, error)
	GetChat(id chat.ChatID) (chat.Chat, error)
	ListChatsByParticipant(email string) ([]chat.Chat, error)
	DeleteChat(id chat.ChatID) error
}

// ChatRepository stores chats under "chat:{id}" and indexes every participant
// under "member:{email}:{id}", so that listing the chats of a user is a prefix scan.
// "pair:{min}:{max}" holds the id of the chat between two users and makes a duplicate
// impossible to commit.
type ChatRepository struct {
	db *badger.DB
}

func NewChatRepository(db *badger.DB) IChatRepository {
	return &ChatRepository{db: db}
}

// CreateChat stores a chat between users.
// When the users already share a chat, a *chat.Rejection carrying its id is returned.
func (r ChatRepository) CreateChat(users []string) (chat.Chat, error) {
	created := chat.Chat{
		ID:        chat.ChatID(uuid.New().String()),
		Users:     users,
		CreatedAt: time.Now().UTC(),
	}
	var err error
	for attempt := 0; attempt < createChatAttempts; attempt++ {
		err = r.db.Update(func(txn *badger.Txn) error {
			return createChat(txn, created)
		})
		// A concurrent commit on the same pair: the next attempt reads its id
		if !stderrors.Is(err, badger.ErrConflict) {
			break
		}
	}
	var rejection *chat.Rejection
	if stderrors.As(err, &rejection) {
		return chat.Chat{}, rejection
	}
	if err != nil {
		return chat.Chat{}, fmt.Errorf("create chat: %w", err)
	}
	return created, nil
}

func createChat(txn *badger.Txn, created chat.Chat) error {
	pair := pairKey(created.Users)
	item, err := txn.Get(pair)
	switch {
	case err == nil:
		existing, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return &chat.Rejection{Reason: errors.ErrChatAlreadyExists, ChatID: chat.ChatID(existing)}
	case !stderrors.Is(err, badger.ErrKeyNotFound):
		return err
	}

	if err := txn.Set(pair, []byte(created.ID.String())); err != nil {
		return err
	}
	if err := txn.Set(chatKey(created.ID), marshalChat(created)); err != nil {
		return err
	}
	for _, email := range lo.Uniq(created.Users) {
		if err := txn.Set(memberKey(email, created.ID), nil); err != nil {
			return err
		}
	}
	return nil
}

func (r ChatRepository) GetChat(id chat.ChatID) (chat.Chat, error) {
	var found chat.Chat
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getChat(txn, id)
		return err
	})
	return found, err
}

// ListChatsByParticipant returns the chats of email, oldest first.
func (r ChatRepository) ListChatsByParticipant(email string) ([]chat.Chat, error) {
	var chats []chat.Chat
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(memberPrefix + email + ":")
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		var ids []chat.ChatID
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, chat.ChatID(strings.TrimPrefix(string(it.Item().Key()), string(prefix))))
		}
		for _, id := range ids {
			c, err := getChat(txn, id)
			if stderrors.Is(err, errors.ErrChatNotFound) {
				// Dangling index entry, ignored
				continue
			}
			if err != nil {
				return err
			}
			chats = append(chats, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].CreatedAt.Before(chats[j].CreatedAt)
	})
	return chats, nil
}

// DeleteChat removes the chat, its participant index and its pair entry.
// Messages are owned by the message repository.
func (r ChatRepository) DeleteChat(id chat.ChatID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		c, err := getChat(txn, id)
		if err != nil {
			return err
		}
		for _, email := range lo.Uniq(c.Users) {
			if err := txn.Delete(memberKey(email, id)); err != nil {
				return err
			}
		}
		if err := deletePair(txn, c); err != nil {
			return err
		}
		return txn.Delete(chatKey(id))
	})
}

func getChat(txn *badger.Txn, id chat.ChatID) (chat.Chat, error) {
	item, err := txn.Get(chatKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return chat.Chat{}, errors.ErrChatNotFound
	}
	if err != nil {
		return chat.Chat{}, err
	}
	var c chat.Chat
	err = item.Value(func(val []byte) error {
		c, err = unmarshalChat(val)
		return err
	})
	return c, err
}

// deletePair drops the pair entry only when it still points to c.
func deletePair(txn *badger.Txn, c chat.Chat) error {
	pair := pairKey(c.Users)
	item, err := txn.Get(pair)
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	owner, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	if string(owner) != c.ID.String() {
		return nil
	}
	return txn.Delete(pair)
}

// pairKey does not depend on who opened the chat.
func pairKey(users []string) []byte {
	sorted := lo.Uniq(users)
	sort.Strings(sorted)
	return []byte(pairPrefix + strings.Join(sorted, ":"))
}

func chatKey(id chat.ChatID) []byte {
	return []byte(chatPrefix + id.String())
}

func memberKey(email string, id chat.ChatID) []byte {
	return []byte(memberPrefix + email + ":" + id.String())
}

func marshalChat(c chat.Chat) []byte {
	var e encoder
	e.putString(chatFieldID, c.ID.String())
	e.putStrings(chatFieldUsers, c.Users)
	e.putInt64(chatFieldCreatedAt, unixNano(c.CreatedAt))
	return e.buf
}

func unmarshalChat(data []byte) (chat.Chat, error) {
	var c chat.Chat
	err := decode(data, func(f field) error {
		switch f.num {
		case chatFieldID:
			id, err := f.asString()
			c.ID = chat.ChatID(id)
			return err
		case chatFieldUsers:
			email, err := f.asString()
			c.Users = append(c.Users, email)
			return err
		case chatFieldCreatedAt:
			var err error
			c.CreatedAt, err = fromUnixNano(f.asInt64())
			return err
		}
		return nil
	})
	if err != nil {
		return chat.Chat{}, fmt.Errorf("unmarshal chat: %w", err)
	}
	return c, nil
}
