package models

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const invitationTokenBytes = 32

// DefaultInvitationTTL is how long a fresh invitation stays claimable when no
// explicit expiry is supplied.
const DefaultInvitationTTL = 30 * 24 * time.Hour

// TokenSource produces opaque invitation tokens.
type TokenSource func() (string, error)

// Clock reads the current time. Injected so tests can pin it.
type Clock func() time.Time

// NewInvitationToken is the default TokenSource: 32 random bytes, URL-safe
// encoded so the token can ride in an invite link.
func NewInvitationToken() (string, error) {
	b := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Invitation grants a candidate time-boxed access to signup via a token link.
//
// ID is the hex form of the storage object id and is empty until the record
// has been persisted. Token and CreatedAt are captured once at construction
// and never regenerated.
type Invitation struct {
	ID        string
	FullName  string
	Email     string
	Cohort    int
	Token     string
	TokenUsed bool
	LogState  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

type invitationSettings struct {
	id        string
	token     string
	tokenUsed bool
	logState  bool
	createdAt time.Time
	updatedAt time.Time
	expiresAt time.Time
	tokens    TokenSource
	clock     Clock
}

// InvitationOption tweaks construction. Used when rebuilding records loaded
// from storage and to pin the token source and clock in tests.
type InvitationOption func(*invitationSettings)

// WithID sets a known identifier, e.g. when rehydrating from storage.
func WithID(id string) InvitationOption {
	return func(s *invitationSettings) { s.id = id }
}

// WithToken keeps an existing token instead of generating a new one.
func WithToken(token string) InvitationOption {
	return func(s *invitationSettings) { s.token = token }
}

// WithTokenUsed restores the consumed flag.
func WithTokenUsed(used bool) InvitationOption {
	return func(s *invitationSettings) { s.tokenUsed = used }
}

// WithLogState restores the registration-completed flag.
func WithLogState(logged bool) InvitationOption {
	return func(s *invitationSettings) { s.logState = logged }
}

// WithCreatedAt restores an existing creation timestamp.
func WithCreatedAt(t time.Time) InvitationOption {
	return func(s *invitationSettings) { s.createdAt = t }
}

// WithExpiresAt sets an explicit expiry. It must be strictly after the
// creation timestamp or construction fails.
func WithExpiresAt(t time.Time) InvitationOption {
	return func(s *invitationSettings) { s.expiresAt = t }
}

// WithTokenSource overrides the random token generator.
func WithTokenSource(src TokenSource) InvitationOption {
	return func(s *invitationSettings) { s.tokens = src }
}

// WithClock overrides the time source.
func WithClock(c Clock) InvitationOption {
	return func(s *invitationSettings) { s.clock = c }
}

// NewInvitation validates every field independently and returns a fully
// initialized invitation. The token and creation timestamp are generated here
// unless supplied through options.
func NewInvitation(fullName, email string, cohort int, opts ...InvitationOption) (*Invitation, error) {
	s := invitationSettings{tokens: NewInvitationToken, clock: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&s)
	}

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
	if s.id != "" {
		if _, err := ValidateID(s.id); err != nil {
			return nil, err
		}
	}

	token := s.token
	if token == "" {
		token, err = s.tokens()
		if err != nil {
			return nil, err
		}
	}

	createdAt := s.createdAt
	if createdAt.IsZero() {
		createdAt = s.clock()
	}
	expiresAt := s.expiresAt
	if expiresAt.IsZero() {
		expiresAt = createdAt.Add(DefaultInvitationTTL)
	} else if !expiresAt.After(createdAt) {
		return nil, valueError("expires_at", "expiration date must be after the creation date")
	}
	updatedAt := s.updatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	return &Invitation{
		ID:        s.id,
		FullName:  name,
		Email:     addr,
		Cohort:    number,
		Token:     token,
		TokenUsed: s.tokenUsed,
		LogState:  s.logState,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// IsValid reports whether the invitation can still be claimed right now.
func (inv *Invitation) IsValid() bool {
	return inv.IsValidAt(time.Now().UTC())
}

// IsValidAt reports whether the invitation is claimable at the given instant:
// the token has not been consumed and the expiry has not passed. There are
// exactly two outcomes, no partial validity.
func (inv *Invitation) IsValidAt(now time.Time) bool {
	return !inv.TokenUsed && now.Before(inv.ExpiresAt)
}

// IsExpired reports whether the expiry has passed, regardless of token use.
func (inv *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(inv.ExpiresAt)
}

// MarkUsed consumes the token and touches the update timestamp.
func (inv *Invitation) MarkUsed(now time.Time) {
	inv.TokenUsed = true
	inv.UpdatedAt = now
}

// MarkRegistered records that the invited candidate completed registration.
func (inv *Invitation) MarkRegistered(now time.Time) {
	inv.LogState = true
	inv.UpdatedAt = now
}

// Document serializes the invitation to its storage shape. The key set is
// fixed: every call emits the same ten keys. The identifier always travels
// under the storage-side _id key, never under the domain-side id.
func (inv *Invitation) Document() (bson.M, error) {
	oid := primitive.NewObjectID()
	if inv.ID != "" {
		id, err := ValidateID(inv.ID)
		if err != nil {
			return nil, err
		}
		oid, _ = primitive.ObjectIDFromHex(id)
	}
	return bson.M{
		"_id":        oid,
		"full_name":  inv.FullName,
		"email":      inv.Email,
		"cohort":     inv.Cohort,
		"token":      inv.Token,
		"token_used": inv.TokenUsed,
		"log_state":  inv.LogState,
		"created_at": inv.CreatedAt,
		"updated_at": inv.UpdatedAt,
		"expires_at": inv.ExpiresAt,
	}, nil
}

// InvitationFromDocument rebuilds an invitation from its storage document,
// type-checking every field. This is the one place wrong-typed storage values
// can enter the domain, so the checks are strict: a boolean cohort, a numeric
// token or a string timestamp are all rejected.
func InvitationFromDocument(doc bson.M) (*Invitation, error) {
	id, err := documentID(doc["_id"])
	if err != nil {
		return nil, err
	}

	rawName, ok := doc["full_name"].(string)
	if !ok {
		return nil, typeError("full_name", "full_name must be a string")
	}
	name, err := ValidateName(rawName, "full_name")
	if err != nil {
		return nil, err
	}

	rawEmail, ok := doc["email"].(string)
	if !ok {
		return nil, typeError("email", "email must be a string")
	}
	addr, err := ValidateEmail(rawEmail)
	if err != nil {
		return nil, err
	}

	cohort, err := CohortFromValue(doc["cohort"])
	if err != nil {
		return nil, err
	}

	token, ok := doc["token"].(string)
	if !ok {
		return nil, typeError("token", "token must be a string")
	}
	if token == "" {
		return nil, valueError("token", "token cannot be empty")
	}

	tokenUsed, ok := doc["token_used"].(bool)
	if !ok {
		return nil, typeError("token_used", "token_used must be a boolean")
	}
	logState, ok := doc["log_state"].(bool)
	if !ok {
		return nil, typeError("log_state", "log_state must be a boolean")
	}

	createdAt, err := timestampFromValue(doc["created_at"], "created_at")
	if err != nil {
		return nil, err
	}
	updatedAt, err := timestampFromValue(doc["updated_at"], "updated_at")
	if err != nil {
		return nil, err
	}
	expiresAt, err := timestampFromValue(doc["expires_at"], "expires_at")
	if err != nil {
		return nil, err
	}
	if !expiresAt.After(createdAt) {
		return nil, valueError("expires_at", "expiration date must be after the creation date")
	}

	return &Invitation{
		ID:        id,
		FullName:  name,
		Email:     addr,
		Cohort:    cohort,
		Token:     token,
		TokenUsed: tokenUsed,
		LogState:  logState,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		ExpiresAt: expiresAt,
	}, nil
}

func documentID(value interface{}) (string, error) {
	if oid, ok := value.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return ValidateID(value)
}

func timestampFromValue(value interface{}, field string) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case primitive.DateTime:
		return v.Time().UTC(), nil
	default:
		return time.Time{}, typeError(field, "%s must be a timestamp", field)
	}
}
