package mail

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"
)

// InvitationEmail holds everything needed to render an invitation
// message.
type InvitationEmail struct {
	To        string
	FarmName  string
	RoleName  string
	JoinURL   string
	ExpiresAt time.Time
}

// Mailer sends invitation emails
type Mailer interface {
	SendInvitation(ctx context.Context, email InvitationEmail) error
}

var invitationTemplate = template.Must(template.New("invitation").Parse(
	`You have been invited to join {{.FarmName}} as {{.RoleName}}.

Accept the invitation here: {{.JoinURL}}

This invitation expires on {{.ExpiresAt.Format "Jan 2, 2006"}}. If you did
not expect this email you can ignore it.
`))

// RenderInvitation renders the invitation body
func RenderInvitation(email InvitationEmail) (string, error) {
	var buf bytes.Buffer
	if err := invitationTemplate.Execute(&buf, email); err != nil {
		return "", fmt.Errorf("failed to render invitation email: %w", err)
	}
	return buf.String(), nil
}
