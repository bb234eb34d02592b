package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewUserDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	u, err := NewUser("Ada Lovelace", "ADA@Example.com", 4, "$2a$10$hash", now)
	assert.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", u.FullName)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "candidate", u.Role)
	assert.Equal(t, now, u.CreatedAt)
	assert.Equal(t, now, u.UpdatedAt)
	assert.Empty(t, u.ID)
}

func TestNewUserRejectsEmptyHash(t *testing.T) {
	_, err := NewUser("Ada Lovelace", "ada@example.com", 4, "", time.Now())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidValue))
}

func TestUserRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u, err := NewUser("Ada Lovelace", "ada@example.com", 4, "$2a$10$hash", now)
	assert.NoError(t, err)
	u.GithubUsername = "adal"

	doc, err := u.Document()
	assert.NoError(t, err)
	assert.Contains(t, doc, "_id")
	assert.NotContains(t, doc, "id")
	assert.IsType(t, primitive.ObjectID{}, doc["_id"])

	got, err := UserFromDocument(doc)
	assert.NoError(t, err)
	u.ID = got.ID
	assert.Equal(t, u, got)
}

func TestUserFromDocumentTypeChecks(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	valid := func() bson.M {
		return bson.M{
			"_id":        primitive.NewObjectID(),
			"full_name":  "Ada Lovelace",
			"email":      "ada@example.com",
			"cohort":     4,
			"password":   "$2a$10$hash",
			"role":       "candidate",
			"created_at": now,
			"updated_at": now,
		}
	}

	tests := []struct {
		name  string
		field string
		value interface{}
	}{
		{"numeric name", "full_name", 12},
		{"boolean cohort", "cohort", true},
		{"numeric password", "password", 42},
		{"string timestamp", "created_at", "2026-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid()
			doc[tt.field] = tt.value
			_, err := UserFromDocument(doc)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrWrongType), "got %v", err)
		})
	}
}
