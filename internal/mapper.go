package internal

import (
	"whatsapp-clone/repositories"
)

// InspectPrefixes are the key spaces browsable from the dashboard.
var InspectPrefixes = []string{"chat:", "member:", "msg:", "pair:", "user:"}

// EntryMapper decodes the records of the repositories into dashboard rows.
func EntryMapper(key string, val []byte) InspectRow {
	entry := repositories.Describe(key, val)
	row := InspectRow{
		Key:       key,
		Type:      entry.Kind,
		Timestamp: "--:--:--",
		EntityID:  entry.ID,
		Chat:      entry.Chat,
		Detail:    entry.Detail,
	}
	if !entry.At.IsZero() {
		row.Timestamp = entry.At.Format("2006-01-02 15:04:05")
	}
	if len(row.EntityID) > 36 {
		row.EntityID = row.EntityID[:36]
	}
	return row
}
