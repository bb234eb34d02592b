package invitations

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/cohortly/cohort-api/models"
	templates "github.com/cohortly/cohort-api/templates/html"
)

// Mailer delivers one invitation email. The orchestrator calls it once per
// built invitation and treats failures as per-item, never batch-fatal.
type Mailer interface {
	SendInvite(ctx context.Context, inv *models.Invitation) error
}

// SendGridMailer sends invitation emails through SendGrid.
type SendGridMailer struct {
	APIKey     string
	Sender     string
	SenderName string
	BaseURL    string
}

// SendInvite sends a single invite with the signup link for the invitation's
// token.
func (m *SendGridMailer) SendInvite(ctx context.Context, inv *models.Invitation) error {
	from := mail.NewEmail(m.SenderName, m.Sender)
	to := mail.NewEmail(inv.FullName, inv.Email)
	link := m.BaseURL + "/signup?token=" + url.QueryEscape(inv.Token)
	subject := fmt.Sprintf("You're invited to join cohort %d", inv.Cohort)
	plain := "Accept your invitation using this link: " + link
	html := templates.RenderInviteEmail(inv.FullName, inv.Cohort, link, inv.ExpiresAt)
	msg := mail.NewSingleEmail(from, subject, to, plain, html)

	client := sendgrid.NewSendClient(m.APIKey)
	resp, err := client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
