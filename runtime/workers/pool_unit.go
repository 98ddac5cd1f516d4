package workers

import (
	"context"
	"fmt"
	"log/slog"
	"whatsapp-clone/contract"
	"whatsapp-clone/domain/chat"
	"whatsapp-clone/domain/event"

	"github.com/google/uuid"
)

// Ensure *PoolUnitWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*PoolUnitWorker)(nil)

// PoolUnitWorker turns accepted commands into domain events.
// Several of them consume the same command channel.
type PoolUnitWorker struct {
	commands <-chan chat.Command
	events   chan<- event.DomainEvent
	log      *slog.Logger
}

func NewPoolUnitWorker(
	commands <-chan chat.Command,
	events chan<- event.DomainEvent,
	log *slog.Logger) *PoolUnitWorker {
	return &PoolUnitWorker{
		commands: commands,
		events:   events,
		log:      log,
	}
}

func (w *PoolUnitWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			sendCmd, ok := cmd.(chat.SendMessageCommand)
			if !ok {
				w.log.Debug(fmt.Sprintf("Unhandled command for chat %s: %T", cmd.ChatID(), cmd))
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case w.events <- toEvent(sendCmd):
			}
		}
	}
}

func toEvent(c chat.SendMessageCommand) event.MessagePosted {
	return event.MessagePosted{
		ID:       uuid.New(),
		Chat:     c.Chat,
		Users:    c.Users,
		Sender:   c.Sender,
		Content:  c.Content,
		PhotoURL: c.PhotoURL,
		At:       c.CreatedAt,
	}
}
