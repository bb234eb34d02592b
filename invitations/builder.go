package invitations

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cohortly/cohort-api/models"
)

// BuildInvitations maps validated CSV rows to invitation models, exactly one
// per row, preserving input order. There is no fault isolation here: the
// first invalid row aborts the whole batch with an error naming the row, so
// no partial batch ever reaches dispatch or persistence.
func BuildInvitations(rows []Row, opts ...models.InvitationOption) ([]*models.Invitation, error) {
	built := make([]*models.Invitation, 0, len(rows))
	for i, row := range rows {
		cohort, err := parseCohort(row["cohort"])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		inv, err := models.NewInvitation(row["full_name"], row["email"], cohort, opts...)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		built = append(built, inv)
	}
	return built, nil
}

// parseCohort converts the raw CSV cell to a cohort number. Anything that is
// not a plain base-10 integer — including "true"/"false" and floats — is a
// wrong-type failure; negative numbers fail the model's range rule.
func parseCohort(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, models.WrongTypeError("cohort", "cohort must be a number, got %q", raw)
	}
	return models.ValidateCohort(n)
}
