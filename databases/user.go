package databases

// go generate: mockery --name UserDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/cohortly/cohort-api/models"
)

const userCollectionName = "users"

// UserDatabase contains the methods to use with the users collection
type UserDatabase interface {
	Create(ctx context.Context, user *models.User) (string, error)
	FindByID(ctx context.Context, id string) (*models.User, bool, error)
	FindByEmail(ctx context.Context, email string) (*models.User, bool, error)
	Count(ctx context.Context, filter map[string]interface{}) (int64, error)
}

type userDatabase struct {
	repo *Repository[*models.User]
}

// NewUserDatabase initializes a new instance of user database with the
// provided db connection
func NewUserDatabase(db DatabaseHelper) UserDatabase {
	return &userDatabase{
		repo: NewRepository(db, userCollectionName, models.UserFromDocument),
	}
}

func (c *userDatabase) Create(ctx context.Context, user *models.User) (string, error) {
	return c.repo.Create(ctx, user)
}

func (c *userDatabase) FindByID(ctx context.Context, id string) (*models.User, bool, error) {
	return c.repo.FindByID(ctx, id)
}

func (c *userDatabase) FindByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	return c.repo.FindOne(ctx, bson.M{"email": email})
}

func (c *userDatabase) Count(ctx context.Context, filter map[string]interface{}) (int64, error) {
	return c.repo.Count(ctx, filter)
}
