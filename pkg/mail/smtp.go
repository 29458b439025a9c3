package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
)

// SMTPConfig holds SMTP relay configuration
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// SMTPMailer sends invitation emails through an SMTP relay
type SMTPMailer struct {
	config SMTPConfig
	logger *logrus.Logger

	// send is swappable for tests
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates an SMTPMailer
func NewSMTPMailer(config SMTPConfig, logger *logrus.Logger) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		logger: logger,
		send:   smtp.SendMail,
	}
}

// SendInvitation renders and delivers an invitation email
func (m *SMTPMailer) SendInvitation(ctx context.Context, email InvitationEmail) error {
	body, err := RenderInvitation(email)
	if err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + m.config.From,
		"To: " + email.To,
		"Subject: Invitation to join " + email.FarmName,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	if err := m.send(addr, auth, m.config.From, []string{email.To}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"to":   email.To,
		"farm": email.FarmName,
	}).Info("Invitation email sent")

	return nil
}
