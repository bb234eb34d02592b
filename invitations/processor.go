package invitations

import (
	"context"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cohortly/cohort-api/models"
)

// InvitationStore is the slice of the invitation database the processor
// needs: one-at-a-time persistence through the generic create operation.
type InvitationStore interface {
	Create(ctx context.Context, inv *models.Invitation) (string, error)
}

// Processor chains the four stages for one uploaded CSV:
// validate -> build -> dispatch(xN) -> persist(xN).
//
// Validate and build are all-or-nothing; a failure there aborts the file and
// nothing is sent or saved. Dispatch and persistence are per-item and
// independently best-effort: one row's failed email or save is logged and the
// batch continues, with no rollback of the other side effect.
type Processor struct {
	Store     InvitationStore
	Mailer    Mailer
	BuildOpts []models.InvitationOption
}

// Summary reports what happened to one upload. Dispatch attempts and persist
// attempts always both equal Total.
type Summary struct {
	UploadID     string `json:"uploadId"`
	Total        int    `json:"total"`
	Sent         int    `json:"sent"`
	Saved        int    `json:"saved"`
	SendFailures int    `json:"sendFailures"`
	SaveFailures int    `json:"saveFailures"`
}

// ProcessCSV runs the whole pipeline for one uploaded file, sequentially and
// in row order.
func (p *Processor) ProcessCSV(ctx context.Context, r io.Reader) (*Summary, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}
	built, err := BuildInvitations(rows, p.BuildOpts...)
	if err != nil {
		return nil, err
	}

	uploadID := uuid.New().String()
	summary := &Summary{UploadID: uploadID, Total: len(built)}

	for i, inv := range built {
		if err := p.Mailer.SendInvite(ctx, inv); err != nil {
			summary.SendFailures++
			zap.S().Errorw("failed to send invitation email",
				"uploadId", uploadID,
				"row", i+1,
				"email", inv.Email,
				"cohort", inv.Cohort,
				"error", err,
			)
		} else {
			summary.Sent++
		}

		id, err := p.Store.Create(ctx, inv)
		if err != nil {
			summary.SaveFailures++
			zap.S().Errorw("failed to save invitation",
				"uploadId", uploadID,
				"row", i+1,
				"email", inv.Email,
				"cohort", inv.Cohort,
				"error", err,
			)
		} else {
			inv.ID = id
			summary.Saved++
		}
	}

	zap.S().Infow("processed invitation csv",
		"uploadId", uploadID,
		"total", summary.Total,
		"sent", summary.Sent,
		"saved", summary.Saved,
	)
	return summary, nil
}
