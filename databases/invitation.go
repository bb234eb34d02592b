package databases

// go generate: mockery --name InvitationDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cohortly/cohort-api/models"
)

const invitationCollectionName = "invitations"

// InvitationDatabase contains the methods to use with the invitations
// collection. It is a thin specialization of the generic repository: every
// base operation keeps the repository's found/not-found and error contracts.
type InvitationDatabase interface {
	Create(ctx context.Context, inv *models.Invitation) (string, error)
	FindByID(ctx context.Context, id string) (*models.Invitation, bool, error)
	FindByToken(ctx context.Context, token string) (*models.Invitation, bool, error)
	FindByEmail(ctx context.Context, email string) (*models.Invitation, bool, error)
	FindAll(ctx context.Context, filter map[string]interface{}, opts ...*options.FindOptions) ([]*models.Invitation, error)
	FindPending(ctx context.Context) ([]*models.Invitation, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, filter map[string]interface{}) (int64, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type invitationDatabase struct {
	repo *Repository[*models.Invitation]
}

// NewInvitationDatabase initializes a new instance of invitation database with
// the provided db connection
func NewInvitationDatabase(db DatabaseHelper) InvitationDatabase {
	return &invitationDatabase{
		repo: NewRepository(db, invitationCollectionName, models.InvitationFromDocument),
	}
}

func (c *invitationDatabase) Create(ctx context.Context, inv *models.Invitation) (string, error) {
	return c.repo.Create(ctx, inv)
}

func (c *invitationDatabase) FindByID(ctx context.Context, id string) (*models.Invitation, bool, error) {
	return c.repo.FindByID(ctx, id)
}

func (c *invitationDatabase) FindByToken(ctx context.Context, token string) (*models.Invitation, bool, error) {
	return c.repo.FindOne(ctx, bson.M{"token": token})
}

func (c *invitationDatabase) FindByEmail(ctx context.Context, email string) (*models.Invitation, bool, error) {
	return c.repo.FindOne(ctx, bson.M{"email": email})
}

func (c *invitationDatabase) FindAll(ctx context.Context, filter map[string]interface{}, opts ...*options.FindOptions) ([]*models.Invitation, error) {
	return c.repo.FindAll(ctx, filter, opts...)
}

// FindPending returns invitations whose candidate has not completed
// registration yet.
func (c *invitationDatabase) FindPending(ctx context.Context) ([]*models.Invitation, error) {
	return c.repo.FindAll(ctx, map[string]interface{}{"log_state": false})
}

func (c *invitationDatabase) Update(ctx context.Context, id string, updates map[string]interface{}) (bool, error) {
	return c.repo.Update(ctx, id, updates)
}

func (c *invitationDatabase) Delete(ctx context.Context, id string) (bool, error) {
	return c.repo.Delete(ctx, id)
}

func (c *invitationDatabase) Exists(ctx context.Context, id string) (bool, error) {
	return c.repo.Exists(ctx, id)
}

func (c *invitationDatabase) Count(ctx context.Context, filter map[string]interface{}) (int64, error) {
	return c.repo.Count(ctx, filter)
}

// DeleteExpiredBefore removes invitations whose expiry passed before the
// cutoff. Used by the scheduler sweep; deletes one document at a time since
// the collection helper exposes single-document operations only.
func (c *invitationDatabase) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	expired, err := c.repo.FindAll(ctx, map[string]interface{}{
		"expires_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	var removed int64
	for _, inv := range expired {
		ok, err := c.repo.Delete(ctx, inv.ID)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}
