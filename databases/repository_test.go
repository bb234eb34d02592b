package databases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cohortly/cohort-api/databases"
	mocksdb "github.com/cohortly/cohort-api/databases/mocks"
	"github.com/cohortly/cohort-api/models"
)

func invitationDoc(id primitive.ObjectID) bson.M {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return bson.M{
		"_id":        id,
		"full_name":  "Ada Lovelace",
		"email":      "ada@example.com",
		"cohort":     4,
		"token":      "fixed-token",
		"token_used": false,
		"log_state":  false,
		"created_at": created,
		"updated_at": created,
		"expires_at": created.Add(models.DefaultInvitationTTL),
	}
}

func newMockedRepo(t *testing.T, conn *mocksdb.CollectionHelper) *databases.Repository[*models.Invitation] {
	t.Helper()
	db := &mocksdb.DatabaseHelper{}
	db.On("Collection", "invitations").Return(conn)
	return databases.NewRepository[*models.Invitation](db, "invitations", models.InvitationFromDocument)
}

func TestRepositoryCreateReturnsHexID(t *testing.T) {
	oid := primitive.NewObjectID()
	conn := &mocksdb.CollectionHelper{}
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(oid, nil)
	repo := newMockedRepo(t, conn)

	inv, err := models.NewInvitation("Ada Lovelace", "ada@example.com", 4)
	assert.NoError(t, err)

	id, err := repo.Create(context.Background(), inv)
	assert.NoError(t, err)
	assert.Equal(t, oid.Hex(), id)
}

func TestRepositoryCreateSurfacesInsertError(t *testing.T) {
	conn := &mocksdb.CollectionHelper{}
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))
	repo := newMockedRepo(t, conn)

	inv, err := models.NewInvitation("Ada Lovelace", "ada@example.com", 4)
	assert.NoError(t, err)

	_, err = repo.Create(context.Background(), inv)
	assert.EqualError(t, err, "mocked-error")
}

func TestRepositoryFindByIDMalformed(t *testing.T) {
	conn := &mocksdb.CollectionHelper{}
	repo := newMockedRepo(t, conn)

	_, found, err := repo.FindByID(context.Background(), "not-hex")
	assert.False(t, found)
	assert.True(t, errors.Is(err, databases.ErrMalformedID))
}

func TestRepositoryFindByIDNotFound(t *testing.T) {
	singleResult := &mocksdb.SingleResultHelper{}
	singleResult.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn := &mocksdb.CollectionHelper{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResult)
	repo := newMockedRepo(t, conn)

	inv, found, err := repo.FindByID(context.Background(), primitive.NewObjectID().Hex())
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, inv)
}

func TestRepositoryFindByIDSuccess(t *testing.T) {
	oid := primitive.NewObjectID()
	singleResult := &mocksdb.SingleResultHelper{}
	singleResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*bson.M)
		*arg = invitationDoc(oid)
	})
	conn := &mocksdb.CollectionHelper{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResult)
	repo := newMockedRepo(t, conn)

	inv, found, err := repo.FindByID(context.Background(), oid.Hex())
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, oid.Hex(), inv.ID)
	assert.Equal(t, "ada@example.com", inv.Email)
}

func TestRepositoryFindOneDecodeFailure(t *testing.T) {
	oid := primitive.NewObjectID()
	singleResult := &mocksdb.SingleResultHelper{}
	singleResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*bson.M)
		doc := invitationDoc(oid)
		doc["cohort"] = true
		*arg = doc
	})
	conn := &mocksdb.CollectionHelper{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResult)
	repo := newMockedRepo(t, conn)

	_, found, err := repo.FindOne(context.Background(), bson.M{"token": "fixed-token"})
	assert.False(t, found)
	assert.True(t, errors.Is(err, models.ErrWrongType))
}

func TestRepositoryFindAll(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	cursor := &mocksdb.CursorHelper{}
	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]bson.M)
		*arg = []bson.M{invitationDoc(first), invitationDoc(second)}
	})
	conn := &mocksdb.CollectionHelper{}
	conn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	repo := newMockedRepo(t, conn)

	all, err := repo.FindAll(context.Background(), map[string]interface{}{"cohort": 4})
	assert.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, first.Hex(), all[0].ID)
	assert.Equal(t, second.Hex(), all[1].ID)
}

func TestRepositoryFindAllEmpty(t *testing.T) {
	cursor := &mocksdb.CursorHelper{}
	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]bson.M)
		*arg = nil
	})
	conn := &mocksdb.CollectionHelper{}
	conn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	repo := newMockedRepo(t, conn)

	all, err := repo.FindAll(context.Background(), nil)
	assert.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestRepositoryUpdateReportsModifiedCount(t *testing.T) {
	conn := &mocksdb.CollectionHelper{}
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil).Once()
	repo := newMockedRepo(t, conn)

	ok, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(),
		map[string]interface{}{"token_used": true})
	assert.NoError(t, err)
	assert.True(t, ok)

	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 0, ModifiedCount: 0}, nil).Once()

	ok, err = repo.Update(context.Background(), primitive.NewObjectID().Hex(),
		map[string]interface{}{"token_used": true})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryUpdateMalformedID(t *testing.T) {
	conn := &mocksdb.CollectionHelper{}
	repo := newMockedRepo(t, conn)

	_, err := repo.Update(context.Background(), "nope", map[string]interface{}{"token_used": true})
	assert.True(t, errors.Is(err, databases.ErrMalformedID))
}

func TestRepositoryDelete(t *testing.T) {
	conn := &mocksdb.CollectionHelper{}
	conn.On("DeleteOne", mock.Anything, mock.Anything).
		Return(&mongo.DeleteResult{DeletedCount: 1}, nil).Once()
	repo := newMockedRepo(t, conn)

	ok, err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())
	assert.NoError(t, err)
	assert.True(t, ok)

	conn.On("DeleteOne", mock.Anything, mock.Anything).
		Return(&mongo.DeleteResult{DeletedCount: 0}, nil).Once()

	ok, err = repo.Delete(context.Background(), primitive.NewObjectID().Hex())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryExists(t *testing.T) {
	conn := &mocksdb.CollectionHelper{}
	conn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil).Once()
	repo := newMockedRepo(t, conn)

	ok, err := repo.Exists(context.Background(), primitive.NewObjectID().Hex())
	assert.NoError(t, err)
	assert.True(t, ok)

	conn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), errors.New("mocked-error")).Once()

	_, err = repo.Exists(context.Background(), primitive.NewObjectID().Hex())
	assert.EqualError(t, err, "mocked-error")
}

func TestRepositoryCount(t *testing.T) {
	conn := &mocksdb.CollectionHelper{}
	conn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(7), nil)
	repo := newMockedRepo(t, conn)

	n, err := repo.Count(context.Background(), map[string]interface{}{"cohort": 4})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
