package workers

import (
	"context"
	"log/slog"
	"whatsapp-clone/contract"
	"whatsapp-clone/domain/event"

	"github.com/abadojack/whatlanggo"
)

var _ contract.Worker = (*ModerationWorker)(nil)

// ModerationWorker censors posted messages between the pool workers and the fanout.
// Other events are forwarded untouched.
type ModerationWorker struct {
	censor    contract.Censor
	rawEvents <-chan event.DomainEvent
	events    chan<- event.DomainEvent
	log       *slog.Logger
}

func NewModerationWorker(censor contract.Censor,
	rawEvents <-chan event.DomainEvent,
	events chan<- event.DomainEvent, log *slog.Logger) *ModerationWorker {
	return &ModerationWorker{
		censor:    censor,
		rawEvents: rawEvents,
		events:    events,
		log:       log,
	}
}

func (w *ModerationWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case e, ok := <-w.rawEvents:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			if posted, ok := e.(event.MessagePosted); ok {
				e = w.sanitize(posted)
			}
			select {
			case <-ctx.Done():
				w.log.Debug("Stopping worker")
				return ctx.Err()
			case w.events <- e:
			}
		}
	}
}

func (w *ModerationWorker) sanitize(evt event.MessagePosted) event.MessagePosted {
	sanitized, foundWords := w.censor.Censor(evt.Content)
	if len(foundWords) == 0 {
		return evt
	}
	// The language only helps to tune the dictionaries
	info := whatlanggo.Detect(evt.Content)
	w.log.Warn("Message censored",
		"chat_id", evt.Chat,
		"sender", evt.Sender,
		"lang", info.Lang.Iso6391(),
		"words", len(foundWords))
	evt.Content = sanitized
	return evt
}
