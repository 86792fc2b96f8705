package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFrom(t *testing.T) {
	tests := []struct {
		name     string
		mailFrom string
		user     string
		wantName string
		wantAddr string
	}{
		{name: "full header", mailFrom: "Quotes Desk <quotes@enginuity.app>", user: "smtp@x.test", wantName: "Quotes Desk", wantAddr: "quotes@enginuity.app"},
		{name: "bare address falls back", mailFrom: "quotes@enginuity.app", user: "smtp@x.test", wantName: "Enginuity", wantAddr: "smtp@x.test"},
		{name: "angle brackets without name", mailFrom: "<quotes@enginuity.app>", user: "smtp@x.test", wantName: "Enginuity", wantAddr: "quotes@enginuity.app"},
		{name: "nothing configured", wantName: "Enginuity", wantAddr: "no-reply@enginuity.app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveFrom(tt.mailFrom, tt.user)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantAddr, got.Address)
		})
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{Host: "smtp.example.com"}, nil)
	require.Error(t, err)

	client, err := NewClient(Config{Host: "smtp.example.com", Username: "u@example.com", Password: "secret"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 587, client.cfg.Port)
}

func TestComposeBuildsMultipartMessage(t *testing.T) {
	client, err := NewClient(Config{Host: "smtp.example.com", Port: 587, Username: "u@example.com", Password: "secret"}, nil)
	require.NoError(t, err)

	m, err := client.compose(Message{
		To:          []string{"client@example.com"},
		Subject:     "Quotation for Warehouse",
		HTML:        "<p>Please find the quotation attached.</p>",
		Text:        "Please find the quotation attached.",
		Attachments: []Attachment{{Name: "quotation.pdf", Content: []byte("%PDF-1.4")}},
	})
	require.NoError(t, err)

	buf, err := m.MimeBuf()
	require.NoError(t, err)
	raw := buf.String()

	assert.True(t, strings.Contains(raw, "client@example.com"))
	assert.True(t, strings.Contains(raw, "quotation.pdf"))
	assert.True(t, strings.Contains(raw, "u@example.com"))
}

func TestComposeRejectsMissingRecipient(t *testing.T) {
	client, err := NewClient(Config{Host: "smtp.example.com", Username: "u", Password: "p"}, nil)
	require.NoError(t, err)

	_, err = client.compose(Message{Subject: "x"})
	require.Error(t, err)
}

func TestSendHonoursCancelledContext(t *testing.T) {
	client, err := NewClient(Config{Host: "smtp.example.com", Username: "u", Password: "p"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, client.Send(ctx, Message{To: []string{"a@b.c"}}), context.Canceled)
}
