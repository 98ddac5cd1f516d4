package workers

import (
	"log/slog"
	"reflect"
	"whatsapp-clone/observability"
)

type NamedChannel struct {
	Name    string
	Channel any
}

// channelLoads reads the current length and capacity of each channel.
// Reading len and cap is non-blocking, so sampling never interferes with producers.
func channelLoads(log *slog.Logger, channels []NamedChannel) []observability.ChannelLoad {
	loads := make([]observability.ChannelLoad, 0, len(channels))
	for _, nc := range channels {
		v := reflect.ValueOf(nc.Channel)
		// Verify if this is a channel
		if v.Kind() != reflect.Chan {
			log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		loads = append(loads, observability.ChannelLoad{
			Name:     nc.Name,
			Length:   v.Len(),
			Capacity: v.Cap(),
		})
	}
	return loads
}
