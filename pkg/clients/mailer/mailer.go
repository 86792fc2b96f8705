package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/domodwyer/mailyak/v3"
	"go.uber.org/zap"
)

const (
	defaultFromName    = "Enginuity"
	defaultFromAddress = "no-reply@enginuity.app"
	implicitTLSPort    = 465
)

// Config holds the SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Attachment is a file sent along with a message.
type Attachment struct {
	Name    string
	Content []byte
}

// Message is one outgoing email.
type Message struct {
	To          []string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Client sends email over SMTP.
type Client struct {
	cfg    Config
	from   mail.Address
	logger *zap.Logger
}

// NewClient validates the SMTP settings and builds a client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("SMTP_HOST, SMTP_USER and SMTP_PASS are required for the mailer")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}

	return &Client{
		cfg:    cfg,
		from:   ResolveFrom(cfg.From, cfg.Username),
		logger: logger,
	}, nil
}

// Send delivers the message.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := c.compose(msg)
	if err != nil {
		return err
	}

	if err := m.Send(); err != nil {
		c.logger.Error("smtp send failed", zap.Strings("to", msg.To), zap.Error(err))
		return fmt.Errorf("send mail: %w", err)
	}

	c.logger.Info("mail sent", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func (c *Client) compose(msg Message) (*mailyak.MailYak, error) {
	if len(msg.To) == 0 {
		return nil, errors.New("mail has no recipient")
	}

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)

	var m *mailyak.MailYak
	if c.cfg.Port == implicitTLSPort {
		var err error
		m, err = mailyak.NewWithTLS(addr, auth, &tls.Config{ServerName: c.cfg.Host, MinVersion: tls.VersionTLS12})
		if err != nil {
			return nil, fmt.Errorf("init tls mailer: %w", err)
		}
	} else {
		m = mailyak.New(addr, auth)
	}

	m.To(msg.To...)
	m.From(c.from.Address)
	m.FromName(c.from.Name)
	m.Subject(msg.Subject)
	if msg.HTML != "" {
		m.HTML().Set(msg.HTML)
	}
	if msg.Text != "" {
		m.Plain().Set(msg.Text)
	}
	for _, a := range msg.Attachments {
		m.Attach(a.Name, bytes.NewReader(a.Content))
	}
	return m, nil
}

// ResolveFrom parses MAIL_FROM when it carries an address in angle
// brackets and otherwise falls back to "Enginuity <smtpUser>".
func ResolveFrom(mailFrom, smtpUser string) mail.Address {
	mailFrom = strings.TrimSpace(mailFrom)
	if strings.Contains(mailFrom, "<") && strings.Contains(mailFrom, ">") {
		if parsed, err := mail.ParseAddress(mailFrom); err == nil {
			if parsed.Name == "" {
				parsed.Name = defaultFromName
			}
			return *parsed
		}
	}
	if smtpUser != "" {
		return mail.Address{Name: defaultFromName, Address: smtpUser}
	}
	return mail.Address{Name: defaultFromName, Address: defaultFromAddress}
}
