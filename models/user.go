package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a candidate who claimed an invitation and completed signup.
type User struct {
	ID             string
	FullName       string
	Email          string
	Cohort         int
	PasswordHash   string
	GithubUsername string
	Role           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewUser validates the fields every registered candidate must carry. The
// password hash is produced by the signup flow, never here.
func NewUser(fullName, email string, cohort int, passwordHash string, now time.Time) (*User, error) {
	name, err := ValidateName(fullName, "full_name")
	if err != nil {
		return nil, err
	}
	addr, err := ValidateEmail(email)
	if err != nil {
		return nil, err
	}
	number, err := ValidateCohort(cohort)
	if err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, valueError("password", "password hash cannot be empty")
	}
	return &User{
		FullName:     name,
		Email:        addr,
		Cohort:       number,
		PasswordHash: passwordHash,
		Role:         "candidate",
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Document serializes the user to its storage shape, _id only.
func (u *User) Document() (bson.M, error) {
	oid := primitive.NewObjectID()
	if u.ID != "" {
		id, err := ValidateID(u.ID)
		if err != nil {
			return nil, err
		}
		oid, _ = primitive.ObjectIDFromHex(id)
	}
	return bson.M{
		"_id":             oid,
		"full_name":       u.FullName,
		"email":           u.Email,
		"cohort":          u.Cohort,
		"password":        u.PasswordHash,
		"github_username": u.GithubUsername,
		"role":            u.Role,
		"created_at":      u.CreatedAt,
		"updated_at":      u.UpdatedAt,
	}, nil
}

// UserFromDocument rebuilds a user from its storage document.
func UserFromDocument(doc bson.M) (*User, error) {
	id, err := documentID(doc["_id"])
	if err != nil {
		return nil, err
	}
	name, ok := doc["full_name"].(string)
	if !ok {
		return nil, typeError("full_name", "full_name must be a string")
	}
	addr, ok := doc["email"].(string)
	if !ok {
		return nil, typeError("email", "email must be a string")
	}
	cohort, err := CohortFromValue(doc["cohort"])
	if err != nil {
		return nil, err
	}
	password, ok := doc["password"].(string)
	if !ok {
		return nil, typeError("password", "password must be a string")
	}
	createdAt, err := timestampFromValue(doc["created_at"], "created_at")
	if err != nil {
		return nil, err
	}
	updatedAt, err := timestampFromValue(doc["updated_at"], "updated_at")
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           id,
		FullName:     name,
		Email:        addr,
		Cohort:       cohort,
		PasswordHash: password,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
	if gh, ok := doc["github_username"].(string); ok {
		u.GithubUsername = gh
	}
	if role, ok := doc["role"].(string); ok {
		u.Role = role
	}
	return u, nil
}
