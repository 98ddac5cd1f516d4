package sink

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"whatsapp-clone/contract"
	"whatsapp-clone/domain/event"
	"whatsapp-clone/errors"
	"whatsapp-clone/repositories"
)

var _ contract.EventSink = DiskSink{}

// DiskSink persists posted messages.
// Messages of a chat deleted while they were in flight are dropped.
type DiskSink struct {
	repository repositories.IMessageRepository
	chats      repositories.IChatRepository
	log        *slog.Logger
}

func NewDiskSink(repository repositories.IMessageRepository, chats repositories.IChatRepository, log *slog.Logger) DiskSink {
	return DiskSink{repository: repository, chats: chats, log: log}
}

func (d DiskSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessagePosted:
		_, err := d.chats.GetChat(evt.Chat)
		if stderrors.Is(err, errors.ErrChatNotFound) {
			d.log.Warn("Message of a deleted chat not stored", "chat_id", evt.Chat, "message_id", evt.ID)
			return nil
		}
		if err != nil {
			return err
		}
		return d.repository.StoreMessage(toDiskMessage(evt))
	default:
		d.log.Debug(fmt.Sprintf("Not stored event : %T", evt))
		return nil
	}
}

func toDiskMessage(evt event.MessagePosted) repositories.DiskMessage {
	return repositories.DiskMessage{
		ID:       evt.ID,
		Chat:     evt.Chat,
		Author:   evt.Sender,
		Content:  evt.Content,
		PhotoURL: evt.PhotoURL,
		At:       evt.At,
	}
}
