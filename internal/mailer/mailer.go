// Package mailer delivers account emails over SMTP.
package mailer

import (
	"encoding/json"
	"fmt"
	"html"
	"time"

	"gadgetstore/internal/config"
	"gadgetstore/internal/services"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const resetSubject = "Reset your password"

// Sender is the part of *gomail.Dialer the mailer needs.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer renders and sends transactional emails.
type Mailer struct {
	sender Sender
	from   string
	log    *zap.Logger
}

// New returns a Mailer that sends through the SMTP server of cfg.
func New(cfg config.SMTPConfig, log *zap.Logger) *Mailer {
	return NewWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From, log)
}

func NewWithSender(sender Sender, from string, log *zap.Logger) *Mailer {
	return &Mailer{sender: sender, from: from, log: log.Named("mailer")}
}

// SendPasswordReset emails the reset link carried by evt.
func (m *Mailer) SendPasswordReset(evt services.PasswordResetRequestedEvent) error {
	if evt.Email == "" || evt.ResetURL == "" {
		return errors.New("password reset event without recipient or link")
	}

	greeting := "Hello"
	if evt.FirstName != "" {
		greeting += " " + evt.FirstName
	}
	expires := evt.ExpiresAt.UTC().Format(time.RFC1123)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetAddressHeader("To", evt.Email, evt.FirstName)
	msg.SetHeader("Subject", resetSubject)
	msg.SetBody("text/plain", fmt.Sprintf(
		"%s,\n\nUse the link below to choose a new password:\n\n%s\n\nThe link expires at %s. If you did not ask for a reset you can ignore this email.\n",
		greeting, evt.ResetURL, expires))
	msg.AddAlternative("text/html", fmt.Sprintf(
		"<p>%s,</p><p>Use the link below to choose a new password:</p><p><a href=\"%s\">Reset password</a></p><p>The link expires at %s. If you did not ask for a reset you can ignore this email.</p>",
		html.EscapeString(greeting), html.EscapeString(evt.ResetURL), expires))

	if err := m.sender.DialAndSend(msg); err != nil {
		return errors.Wrap(err, "send password reset email")
	}
	m.log.Info("password reset email sent", zap.String("user_id", evt.UserID))
	return nil
}

// HandlePasswordReset decodes a user.password_reset_requested payload and
// sends the email.
func (m *Mailer) HandlePasswordReset(body []byte) error {
	var evt services.PasswordResetRequestedEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return errors.Wrap(err, "decode password reset event")
	}
	return m.SendPasswordReset(evt)
}
