package invitations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cohortly/cohort-api/models"
)

type fakeStore struct {
	created []*models.Invitation
	failOn  map[string]bool
}

func (f *fakeStore) Create(ctx context.Context, inv *models.Invitation) (string, error) {
	if f.failOn[inv.Email] {
		return "", errors.New("mocked-error")
	}
	f.created = append(f.created, inv)
	return "5fc51f58c72ff10004dca382", nil
}

type fakeMailer struct {
	sent   []string
	failOn map[string]bool
}

func (f *fakeMailer) SendInvite(ctx context.Context, inv *models.Invitation) error {
	f.sent = append(f.sent, inv.Email)
	if f.failOn[inv.Email] {
		return errors.New("mocked-error")
	}
	return nil
}

const processorCSV = "full_name,email,cohort\n" +
	"Ada Lovelace,ada@example.com,4\n" +
	"Grace Hopper,grace@example.com,4\n" +
	"Edsger Dijkstra,edsger@example.com,5\n"

func TestProcessorProcessCSVSuccess(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{}
	p := &Processor{Store: store, Mailer: mailer}

	summary, err := p.ProcessCSV(context.Background(), strings.NewReader(processorCSV))
	assert.NoError(t, err)

	assert.NotEmpty(t, summary.UploadID)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Sent)
	assert.Equal(t, 3, summary.Saved)
	assert.Zero(t, summary.SendFailures)
	assert.Zero(t, summary.SaveFailures)

	assert.Equal(t, []string{"ada@example.com", "grace@example.com", "edsger@example.com"}, mailer.sent)
	assert.Len(t, store.created, 3)
	assert.Equal(t, "5fc51f58c72ff10004dca382", store.created[0].ID)
}

func TestProcessorSendFailureDoesNotStopBatch(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{failOn: map[string]bool{"grace@example.com": true}}
	p := &Processor{Store: store, Mailer: mailer}

	summary, err := p.ProcessCSV(context.Background(), strings.NewReader(processorCSV))
	assert.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.SendFailures)
	// the row whose email failed is still persisted
	assert.Equal(t, 3, summary.Saved)
	assert.Len(t, store.created, 3)
}

func TestProcessorSaveFailureDoesNotStopBatch(t *testing.T) {
	store := &fakeStore{failOn: map[string]bool{"ada@example.com": true}}
	mailer := &fakeMailer{}
	p := &Processor{Store: store, Mailer: mailer}

	summary, err := p.ProcessCSV(context.Background(), strings.NewReader(processorCSV))
	assert.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Sent)
	assert.Equal(t, 2, summary.Saved)
	assert.Equal(t, 1, summary.SaveFailures)
	// every row is still attempted on both sides
	assert.Len(t, mailer.sent, 3)
}

func TestProcessorInvalidRowAbortsBeforeSideEffects(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{}
	p := &Processor{Store: store, Mailer: mailer}

	bad := "full_name,email,cohort\n" +
		"Ada Lovelace,ada@example.com,4\n" +
		"Grace Hopper,grace@example.com,true\n"

	summary, err := p.ProcessCSV(context.Background(), strings.NewReader(bad))
	assert.Nil(t, summary)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrWrongType))

	assert.Empty(t, mailer.sent)
	assert.Empty(t, store.created)
}

func TestProcessorMissingColumnsAborts(t *testing.T) {
	p := &Processor{Store: &fakeStore{}, Mailer: &fakeMailer{}}

	summary, err := p.ProcessCSV(context.Background(), strings.NewReader("full_name\nAda Lovelace\n"))
	assert.Nil(t, summary)

	var missing *MissingColumnsError
	assert.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"cohort", "email"}, missing.Columns)
}

func TestProcessorBuildOptionsFlowThrough(t *testing.T) {
	store := &fakeStore{}
	p := &Processor{
		Store:     store,
		Mailer:    &fakeMailer{},
		BuildOpts: []models.InvitationOption{models.WithToken("pinned-token")},
	}

	_, err := p.ProcessCSV(context.Background(), strings.NewReader("full_name,email,cohort\nAda Lovelace,ada@example.com,4\n"))
	assert.NoError(t, err)
	assert.Equal(t, "pinned-token", store.created[0].Token)
}
