package scheduler

import (
	"context"
	"net/url"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/cohortly/cohort-api/config"
	"github.com/cohortly/cohort-api/databases"
	"github.com/cohortly/cohort-api/models"
	templates "github.com/cohortly/cohort-api/templates/html"
)

// reminderWindow is how close to expiry an invitation must be before the
// candidate gets a reminder email.
const reminderWindow = 72 * time.Hour

// sweepRetention is how long expired invitations are kept before the sweep
// deletes them.
const sweepRetention = 90 * 24 * time.Hour

// Scheduler handles periodic background jobs for the invitation lifecycle
type Scheduler struct {
	cron   *cron.Cron
	DB     databases.InvitationDatabase
	Config config.Config
}

// NewScheduler creates a new scheduler instance
func NewScheduler(db databases.InvitationDatabase, conf config.Config) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		DB:     db,
		Config: conf,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Send expiry reminders daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.sendExpiryReminders)
	if err != nil {
		zap.S().Errorw("failed to register reminder job", "error", err)
	}

	// Sweep long-expired invitations daily at 4 AM UTC
	_, err = s.cron.AddFunc("0 4 * * *", s.sweepExpiredInvitations)
	if err != nil {
		zap.S().Errorw("failed to register sweep job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Invitation scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Invitation scheduler stopped")
}

// sendExpiryReminders emails candidates whose unclaimed invitation expires
// within the reminder window
func (s *Scheduler) sendExpiryReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	pending, err := s.DB.FindPending(ctx)
	if err != nil {
		zap.S().Errorw("failed to find invitations needing reminder", "error", err)
		return
	}

	sent := 0
	for _, inv := range pending {
		if inv.TokenUsed || !inv.IsValidAt(now) {
			continue
		}
		if inv.ExpiresAt.After(now.Add(reminderWindow)) {
			continue
		}
		if err := s.sendReminderEmail(ctx, inv); err != nil {
			zap.S().Errorw("failed to send reminder email",
				"invitationId", inv.ID,
				"email", inv.Email,
				"error", err)
			continue
		}
		sent++
	}

	zap.S().Infow("Expiry reminder job complete",
		"candidates", len(pending),
		"remindersSent", sent,
	)
}

// sweepExpiredInvitations removes invitations that expired past the retention
// cutoff
func (s *Scheduler) sweepExpiredInvitations() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-sweepRetention)
	removed, err := s.DB.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		zap.S().Errorw("failed to sweep expired invitations", "error", err)
		return
	}

	zap.S().Infow("Expired invitation sweep complete",
		"cutoff", cutoff,
		"removed", removed,
	)
}

func (s *Scheduler) sendReminderEmail(ctx context.Context, inv *models.Invitation) error {
	from := mail.NewEmail(s.Config.EmailSenderName, s.Config.EmailSender)
	to := mail.NewEmail(inv.FullName, inv.Email)
	link := s.Config.BaseURL + "/signup?token=" + url.QueryEscape(inv.Token)

	subject := "Reminder: your cohort invitation expires soon"
	plain := "Your invitation is about to expire. Accept it here: " + link
	html := templates.RenderReminderEmail(inv.FullName, link, inv.ExpiresAt)

	msg := mail.NewSingleEmail(from, subject, to, plain, html)
	client := sendgrid.NewSendClient(s.Config.SendGridAPIKey)
	resp, err := client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", resp.StatusCode, "body", resp.Body)
	}
	return nil
}
