package sink

import (
	"context"
	stderrors "errors"
	"log/slog"
	"whatsapp-clone/contract"
	"whatsapp-clone/domain/event"
	"whatsapp-clone/errors"
	"whatsapp-clone/repositories"
)

var _ contract.EventSink = PresenceSink{}

// PresenceSink moves the last seen time of a sender forward on every posted message.
type PresenceSink struct {
	repository repositories.IUserRepository
	log        *slog.Logger
}

func NewPresenceSink(repository repositories.IUserRepository, log *slog.Logger) PresenceSink {
	return PresenceSink{repository: repository, log: log}
}

func (p PresenceSink) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.MessagePosted)
	if !ok {
		return nil
	}
	err := p.repository.TouchLastSeen(evt.Sender, evt.At)
	if stderrors.Is(err, errors.ErrUserNotFound) {
		// Senders created before registration existed have no profile
		p.log.Debug("No profile to touch", "email", evt.Sender)
		return nil
	}
	return err
}
