package templates

import (
	"fmt"
	"html"
	"time"
)

// RenderInviteEmail generates the HTML body for a cohort invitation email.
// The link carries the invitation token; the expiry is shown so candidates
// know how long the invite stays claimable.
func RenderInviteEmail(fullName string, cohort int, link string, expiresAt time.Time) string {
	safeName := html.EscapeString(fullName)
	safeLink := html.EscapeString(link)
	expiry := expiresAt.UTC().Format("January 2, 2006")

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>You're invited</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f5f7; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: linear-gradient(135deg, #2563eb 0%%, #7c3aed 100%%); padding: 40px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 40px 30px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .content h2 { color: #111827; margin-top: 0; }
    .cta-button { display: inline-block; background: linear-gradient(135deg, #2563eb 0%%, #7c3aed 100%%); color: #fff; padding: 14px 28px; border-radius: 8px; text-decoration: none; font-weight: 700; margin-top: 20px; }
    .meta { color: #6b7280; font-size: 13px; margin-top: 30px; }
    .footer { padding: 30px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid rgba(0,0,0,0.1); }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Welcome to cohort %d</h1>
    </div>
    <div class="content">
      <h2>Hi %s,</h2>
      <p>You have been selected to join cohort %d. Click the button below to set up your account and get started.</p>
      <p style="text-align:center;"><a class="cta-button" href="%s">Accept your invitation</a></p>
      <p class="meta">This invitation expires on %s. If the button does not work, copy this link into your browser:<br>%s</p>
    </div>
    <div class="footer">
      <p>&copy; Cohortly | you received this email because an administrator invited you</p>
    </div>
  </div>
</body>
</html>`, cohort, safeName, cohort, safeLink, expiry, safeLink)
}

// RenderReminderEmail generates the HTML body for the expiry reminder the
// scheduler sends to candidates who have not registered yet.
func RenderReminderEmail(fullName string, link string, expiresAt time.Time) string {
	expiry := expiresAt.UTC().Format("January 2, 2006 15:04 MST")
	body := fmt.Sprintf("Hi %s,\n\nYour cohort invitation is still waiting for you, but it expires on %s.\n\nAccept it here before it lapses: %s", fullName, expiry, link)
	return RenderGenericEmail("Your invitation is about to expire", body)
}
