package mail

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogMailer writes invitation emails to the log instead of sending
// them. Used in development and tests.
type LogMailer struct {
	logger *logrus.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendInvitation logs the rendered invitation
func (m *LogMailer) SendInvitation(ctx context.Context, email InvitationEmail) error {
	body, err := RenderInvitation(email)
	if err != nil {
		return err
	}

	m.logger.WithFields(logrus.Fields{
		"to":       email.To,
		"farm":     email.FarmName,
		"role":     email.RoleName,
		"join_url": email.JoinURL,
	}).Info("Invitation email (log delivery)\n" + body)

	return nil
}
