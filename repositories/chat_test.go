package repositories

import (
	stderrors "errors"
	"sync"
	"testing"
	"whatsapp-clone/domain/chat"
	"whatsapp-clone/errors"

	"github.com/stretchr/testify/require"
)

func TestChatRepository_CreateAndList(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))

	// Given alice has two chats and bob one
	c1, err := repository.CreateChat([]string{"alice@x.com", "bob@x.com"})
	req.NoError(err)
	c2, err := repository.CreateChat([]string{"alice@x.com", "carol@x.com"})
	req.NoError(err)

	// When listing alice's chats
	chats, err := repository.ListChatsByParticipant("alice@x.com")
	req.NoError(err)

	// Then both are returned oldest first
	req.Len(chats, 2)
	req.Equal(c1.ID, chats[0].ID)
	req.Equal(c2.ID, chats[1].ID)
	req.Equal([]string{"alice@x.com", "bob@x.com"}, chats[0].Users)

	bobChats, err := repository.ListChatsByParticipant("bob@x.com")
	req.NoError(err)
	req.Len(bobChats, 1)

	none, err := repository.ListChatsByParticipant("dave@x.com")
	req.NoError(err)
	req.Empty(none)

	fetched, err := repository.GetChat(c2.ID)
	req.NoError(err)
	req.Equal(c2.Users, fetched.Users)
	req.True(c2.CreatedAt.Equal(fetched.CreatedAt))
}

func TestChatRepository_PrefixDoesNotLeak(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))

	_, err := repository.CreateChat([]string{"al@x.com", "bob@x.com"})
	req.NoError(err)
	_, err = repository.CreateChat([]string{"al@x.com.evil", "bob@x.com"})
	req.NoError(err)

	chats, err := repository.ListChatsByParticipant("al@x.com")
	req.NoError(err)
	req.Len(chats, 1)
}

func TestChatRepository_Delete(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))

	created, err := repository.CreateChat([]string{"alice@x.com", "bob@x.com"})
	req.NoError(err)

	req.NoError(repository.DeleteChat(created.ID))

	_, err = repository.GetChat(created.ID)
	req.ErrorIs(err, errors.ErrChatNotFound)

	chats, err := repository.ListChatsByParticipant("bob@x.com")
	req.NoError(err)
	req.Empty(chats)

	req.ErrorIs(repository.DeleteChat(created.ID), errors.ErrChatNotFound)
	req.ErrorIs(repository.DeleteChat(chat.ChatID("unknown")), errors.ErrChatNotFound)
}

func TestChatRepository_CreateChat_Duplicate_Pair(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))

	// Given alice opened a chat with bob
	created, err := repository.CreateChat([]string{"alice@x.com", "bob@x.com"})
	req.NoError(err)

	// When bob opens the same pair
	_, err = repository.CreateChat([]string{"bob@x.com", "alice@x.com"})

	// Then the existing chat is reported
	req.ErrorIs(err, errors.ErrChatAlreadyExists)
	var rejection *chat.Rejection
	req.True(stderrors.As(err, &rejection))
	req.Equal(created.ID, rejection.ChatID)

	chats, err := repository.ListChatsByParticipant("bob@x.com")
	req.NoError(err)
	req.Len(chats, 1)

	// And once deleted, the pair can be opened again
	req.NoError(repository.DeleteChat(created.ID))
	recreated, err := repository.CreateChat([]string{"bob@x.com", "alice@x.com"})
	req.NoError(err)
	req.NotEqual(created.ID, recreated.ID)
}

func TestChatRepository_CreateChat_Concurrent_Pair(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t))
	const callers = 50

	// Given both users open the chat at the same time, many times
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		mu      sync.Mutex
		created []chat.ChatID
		pointed []chat.ChatID
		failed  []error
	)
	for i := 0; i < callers; i++ {
		for _, users := range [][]string{{"a@x.com", "b@x.com"}, {"b@x.com", "a@x.com"}} {
			wg.Add(1)
			go func(users []string) {
				defer wg.Done()
				<-start
				c, err := repository.CreateChat(users)
				mu.Lock()
				defer mu.Unlock()
				var rejection *chat.Rejection
				switch {
				case err == nil:
					created = append(created, c.ID)
				case stderrors.As(err, &rejection) && stderrors.Is(err, errors.ErrChatAlreadyExists):
					pointed = append(pointed, rejection.ChatID)
				default:
					failed = append(failed, err)
				}
			}(users)
		}
	}

	// When they all run
	close(start)
	wg.Wait()

	// Then a single chat is stored and every other caller is sent to it
	req.Empty(failed)
	req.Len(created, 1)
	req.Len(pointed, 2*callers-1)
	for _, id := range pointed {
		req.Equal(created[0], id)
	}

	chats, err := repository.ListChatsByParticipant("a@x.com")
	req.NoError(err)
	req.Len(chats, 1)
}
