package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cohortly/cohort-api/config"
	"github.com/cohortly/cohort-api/databases"
	"github.com/cohortly/cohort-api/models"
)

// Signup exported for testing purposes
type Signup struct {
	DB  databases.InvitationDatabase
	UDB databases.UserDatabase
}

type checkInvitationResponse struct {
	Valid     bool      `json:"valid"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Cohort    int       `json:"cohort"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type registerRequest struct {
	Token          string `json:"token"`
	Password       string `json:"password"`
	GithubUsername string `json:"githubUsername"`
}

type registerResponse struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Cohort   int    `json:"cohort"`
	Role     string `json:"role"`
}

// lookupInvitation resolves a signup token to its invitation and writes the
// appropriate error status when the token cannot be claimed.
func (s Signup) lookupInvitation(w http.ResponseWriter, r *http.Request, token string) (*models.Invitation, bool) {
	if token == "" {
		config.ErrorStatus("token is required", http.StatusBadRequest, w,
			errors.New("missing token"))
		return nil, false
	}

	inv, found, err := s.DB.FindByToken(r.Context(), token)
	if err != nil {
		config.ErrorStatus("failed to get invitation by token", http.StatusInternalServerError, w, err)
		return nil, false
	}
	if !found {
		config.ErrorStatus("invitation not found", http.StatusNotFound, w,
			errors.New("no invitation with that token"))
		return nil, false
	}
	if inv.TokenUsed {
		config.ErrorStatus("invitation has already been used", http.StatusConflict, w,
			errors.New("invitation token already claimed"))
		return nil, false
	}
	if inv.IsExpired(time.Now()) {
		config.ErrorStatus("invitation has expired", http.StatusGone, w,
			errors.New("invitation expired"))
		return nil, false
	}
	return inv, true
}

// CheckInvitationHandler validates a signup token before the candidate fills
// in the registration form
func (s Signup) CheckInvitationHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	inv, ok := s.lookupInvitation(w, r, r.URL.Query().Get("token"))
	if !ok {
		return
	}

	b, err := json.Marshal(checkInvitationResponse{
		Valid:     true,
		FullName:  inv.FullName,
		Email:     inv.Email,
		Cohort:    inv.Cohort,
		ExpiresAt: inv.ExpiresAt,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RegisterHandler claims an invitation token and creates the candidate's
// account
func (s Signup) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Password == "" {
		config.ErrorStatus("password is required", http.StatusBadRequest, w,
			errors.New("missing password"))
		return
	}

	inv, ok := s.lookupInvitation(w, r, strings.TrimSpace(req.Token))
	if !ok {
		return
	}

	_, exists, err := s.UDB.FindByEmail(r.Context(), inv.Email)
	if err != nil {
		config.ErrorStatus("failed to check for existing user", http.StatusInternalServerError, w, err)
		return
	}
	if exists {
		config.ErrorStatus("an account with this email already exists", http.StatusConflict, w,
			errors.New("duplicate account"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := time.Now()
	user, err := models.NewUser(inv.FullName, inv.Email, inv.Cohort, string(hash), now)
	if err != nil {
		config.ErrorStatus("failed to build user from invitation", http.StatusInternalServerError, w, err)
		return
	}
	user.GithubUsername = strings.TrimSpace(req.GithubUsername)

	id, err := s.UDB.Create(r.Context(), user)
	if err != nil {
		config.ErrorStatus("failed to create user", http.StatusInternalServerError, w, err)
		return
	}
	user.ID = id

	_, err = s.DB.Update(r.Context(), inv.ID, map[string]interface{}{
		"token_used": true,
		"log_state":  true,
		"updated_at": now,
	})
	if err != nil {
		config.ErrorStatus("failed to mark invitation as used", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(registerResponse{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Cohort:   user.Cohort,
		Role:     user.Role,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}
