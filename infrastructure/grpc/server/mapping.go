package server

import (
	"whatsapp-clone/domain/chat"
	"whatsapp-clone/domain/user"
	"whatsapp-clone/infrastructure/grpc/api"
	"whatsapp-clone/services"

	"github.com/samber/lo"
)

func toChats(overviews []services.ChatOverview) []api.Chat {
	return lo.Map(overviews, func(item services.ChatOverview, _ int) api.Chat {
		return toChat(item)
	})
}

func toChat(overview services.ChatOverview) api.Chat {
	response := api.Chat{
		ID:        overview.Chat.ID.String(),
		Users:     overview.Chat.Users,
		Recipient: overview.Recipient.Email(),
		Label:     overview.Label,
		CreatedAt: overview.Chat.CreatedAt,
	}
	if overview.RecipientProfile != nil {
		response.RecipientProfile = lo.ToPtr(toProfile(*overview.RecipientProfile, overview.RecipientPresence))
	}
	if overview.LastMessage != nil {
		response.LastMessage = lo.ToPtr(toMessage(*overview.LastMessage))
	}
	return response
}

func toMessages(messages []chat.Message) []api.Message {
	return lo.Map(messages, func(item chat.Message, _ int) api.Message {
		return toMessage(item)
	})
}

func toMessage(message chat.Message) api.Message {
	return api.Message{
		ID:              message.ID.String(),
		ChatID:          message.Chat.String(),
		Sender:          message.Sender,
		Content:         message.Content,
		PhotoURL:        message.PhotoURL,
		ReceiverHasRead: message.ReceiverHasRead,
		CreatedAt:       message.CreatedAt,
	}
}

// toProfile leaves LastSeen out for users that never signed in.
func toProfile(profile user.Profile, presence user.Presence) api.Profile {
	response := api.Profile{
		Email:    profile.Email,
		Username: profile.Username,
		PhotoURL: profile.PhotoURL,
		Online:   presence.Online,
	}
	if !presence.LastSeen.IsZero() {
		response.LastSeen = lo.ToPtr(presence.LastSeen)
	}
	return response
}
