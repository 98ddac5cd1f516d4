package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveRecipient(t *testing.T) {
	tests := []struct {
		name         string
		participants []string
		viewer       string
		want         Recipient
	}{
		{"viewer first", []string{"a@x.com", "b@x.com"}, "a@x.com", "b@x.com"},
		{"viewer second", []string{"a@x.com", "b@x.com"}, "b@x.com", "a@x.com"},
		{"degenerate self pair", []string{"a@x.com", "a@x.com"}, "a@x.com", UnknownRecipient},
		{"no participants", []string{}, "a@x.com", UnknownRecipient},
		{"nil participants", nil, "a@x.com", UnknownRecipient},
		{"viewer not authenticated", []string{"a@x.com", "b@x.com"}, "", UnknownRecipient},
		{"more than two uses first match", []string{"a@x.com", "b@x.com", "c@x.com"}, "a@x.com", "b@x.com"},
		{"duplicated viewer then other", []string{"a@x.com", "a@x.com", "c@x.com"}, "a@x.com", "c@x.com"},
		{"viewer absent from chat", []string{"b@x.com", "c@x.com"}, "a@x.com", "b@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			req.Equal(tt.want, ResolveRecipient(tt.participants, tt.viewer))
		})
	}
}

func TestResolveRecipient_Symmetry(t *testing.T) {
	req := require.New(t)
	pairs := [][2]string{
		{"alice@example.com", "bob@example.com"},
		{"x@y.io", "X@y.io"},
		{"first.last@corp.org", "other@corp.org"},
	}
	for _, p := range pairs {
		participants := []string{p[0], p[1]}
		req.Equal(Recipient(p[1]), ResolveRecipient(participants, p[0]))
		req.Equal(Recipient(p[0]), ResolveRecipient(participants, p[1]))
	}
}

func TestRecipient_Label(t *testing.T) {
	req := require.New(t)
	req.Equal("Unknown contact", UnknownRecipient.Label("Unknown contact"))
	req.Equal("bob@x.com", Recipient("bob@x.com").Label("Unknown contact"))
	req.True(UnknownRecipient.IsUnknown())
	req.False(Recipient("bob@x.com").IsUnknown())
}

func TestChat_IsWellFormed(t *testing.T) {
	req := require.New(t)
	req.True(Chat{Users: []string{"a@x.com", "b@x.com"}}.IsWellFormed())
	req.False(Chat{Users: []string{"a@x.com", "a@x.com"}}.IsWellFormed())
	req.False(Chat{Users: []string{"a@x.com"}}.IsWellFormed())
	req.False(Chat{Users: []string{"a@x.com", ""}}.IsWellFormed())
	req.False(Chat{Users: []string{"a@x.com", "b@x.com", "c@x.com"}}.IsWellFormed())
}

func TestChat_HasParticipant(t *testing.T) {
	req := require.New(t)
	c := Chat{ID: "c1", Users: []string{"a@x.com", "b@x.com"}}
	req.True(c.HasParticipant("a@x.com"))
	req.False(c.HasParticipant("c@x.com"))
	req.False(c.HasParticipant(""))
	req.Equal(Recipient("b@x.com"), c.Recipient("a@x.com"))
}
