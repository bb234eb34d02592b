package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/cohortly/cohort-api/api/handlers"
	mocksdb "github.com/cohortly/cohort-api/databases/mocks"
	"github.com/cohortly/cohort-api/models"
)

func TestSignup_CheckInvitationHandlerSuccess(t *testing.T) {
	inv := testInvitation(t)
	db := &mocksdb.InvitationDatabase{}
	db.On("FindByToken", mock.Anything, "fixed-token").Return(inv, true, nil)
	s := handlers.Signup{DB: db}

	req, _ := http.NewRequest("GET", "/api/v1/signup/check?token=fixed-token", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.CheckInvitationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got map[string]interface{}
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.Equal(t, true, got["valid"])
	assert.Equal(t, "Ada Lovelace", got["fullName"])
	assert.Equal(t, "ada@example.com", got["email"])
	assert.Equal(t, float64(4), got["cohort"])
	// the raw token never comes back in the body
	assert.NotContains(t, got, "token")
}

func TestSignup_CheckInvitationHandlerMissingToken(t *testing.T) {
	s := handlers.Signup{DB: &mocksdb.InvitationDatabase{}}

	req, _ := http.NewRequest("GET", "/api/v1/signup/check", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.CheckInvitationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignup_CheckInvitationHandlerUnknownToken(t *testing.T) {
	db := &mocksdb.InvitationDatabase{}
	db.On("FindByToken", mock.Anything, "unknown").Return(nil, false, nil)
	s := handlers.Signup{DB: db}

	req, _ := http.NewRequest("GET", "/api/v1/signup/check?token=unknown", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.CheckInvitationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSignup_CheckInvitationHandlerUsedToken(t *testing.T) {
	inv := testInvitation(t)
	inv.MarkUsed(time.Now())
	db := &mocksdb.InvitationDatabase{}
	db.On("FindByToken", mock.Anything, "fixed-token").Return(inv, true, nil)
	s := handlers.Signup{DB: db}

	req, _ := http.NewRequest("GET", "/api/v1/signup/check?token=fixed-token", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.CheckInvitationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestSignup_CheckInvitationHandlerExpiredToken(t *testing.T) {
	inv, err := models.NewInvitation("Ada Lovelace", "ada@example.com", 4,
		models.WithToken("fixed-token"),
		models.WithCreatedAt(time.Now().Add(-48*time.Hour)),
		models.WithExpiresAt(time.Now().Add(-24*time.Hour)))
	if err != nil {
		t.Fatal(err)
	}
	db := &mocksdb.InvitationDatabase{}
	db.On("FindByToken", mock.Anything, "fixed-token").Return(inv, true, nil)
	s := handlers.Signup{DB: db}

	req, _ := http.NewRequest("GET", "/api/v1/signup/check?token=fixed-token", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.CheckInvitationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusGone, rr.Code)
}

func registerBody(t *testing.T, token, password, github string) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(map[string]string{
		"token":          token,
		"password":       password,
		"githubUsername": github,
	})
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewBuffer(b)
}

func TestSignup_RegisterHandlerSuccess(t *testing.T) {
	inv := testInvitation(t)
	db := &mocksdb.InvitationDatabase{}
	db.On("FindByToken", mock.Anything, "fixed-token").Return(inv, true, nil)
	db.On("Update", mock.Anything, inv.ID, mock.MatchedBy(func(updates map[string]interface{}) bool {
		return updates["token_used"] == true && updates["log_state"] == true
	})).Return(true, nil)

	udb := &mocksdb.UserDatabase{}
	udb.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, false, nil)
	udb.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter22")) != nil {
			return false
		}
		return u.Email == "ada@example.com" && u.Role == "candidate" && u.GithubUsername == "adal"
	})).Return("5fc51f58c72ff10004dca383", nil)

	s := handlers.Signup{DB: db, UDB: udb}

	req, _ := http.NewRequest("POST", "/api/v1/signup/register", registerBody(t, "fixed-token", "hunter22", "adal"))
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got map[string]interface{}
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	assert.Equal(t, "5fc51f58c72ff10004dca383", got["id"])
	assert.Equal(t, "Ada Lovelace", got["fullName"])
	assert.Equal(t, "candidate", got["role"])
	db.AssertCalled(t, "Update", mock.Anything, inv.ID, mock.Anything)
}

func TestSignup_RegisterHandlerBadBody(t *testing.T) {
	s := handlers.Signup{DB: &mocksdb.InvitationDatabase{}, UDB: &mocksdb.UserDatabase{}}

	req, _ := http.NewRequest("POST", "/api/v1/signup/register", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignup_RegisterHandlerMissingPassword(t *testing.T) {
	s := handlers.Signup{DB: &mocksdb.InvitationDatabase{}, UDB: &mocksdb.UserDatabase{}}

	req, _ := http.NewRequest("POST", "/api/v1/signup/register", registerBody(t, "fixed-token", "", ""))
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignup_RegisterHandlerUsedToken(t *testing.T) {
	inv := testInvitation(t)
	inv.MarkUsed(time.Now())
	db := &mocksdb.InvitationDatabase{}
	db.On("FindByToken", mock.Anything, "fixed-token").Return(inv, true, nil)
	udb := &mocksdb.UserDatabase{}
	s := handlers.Signup{DB: db, UDB: udb}

	req, _ := http.NewRequest("POST", "/api/v1/signup/register", registerBody(t, "fixed-token", "hunter22", ""))
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	udb.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignup_RegisterHandlerDuplicateEmail(t *testing.T) {
	inv := testInvitation(t)
	db := &mocksdb.InvitationDatabase{}
	db.On("FindByToken", mock.Anything, "fixed-token").Return(inv, true, nil)

	udb := &mocksdb.UserDatabase{}
	existing := &models.User{ID: "5fc51f58c72ff10004dca384", Email: "ada@example.com"}
	udb.On("FindByEmail", mock.Anything, "ada@example.com").Return(existing, true, nil)

	s := handlers.Signup{DB: db, UDB: udb}

	req, _ := http.NewRequest("POST", "/api/v1/signup/register", registerBody(t, "fixed-token", "hunter22", ""))
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	udb.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignup_RegisterHandlerBurnFailure(t *testing.T) {
	inv := testInvitation(t)
	db := &mocksdb.InvitationDatabase{}
	db.On("FindByToken", mock.Anything, "fixed-token").Return(inv, true, nil)
	db.On("Update", mock.Anything, inv.ID, mock.Anything).Return(false, errors.New("mocked-error"))

	udb := &mocksdb.UserDatabase{}
	udb.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, false, nil)
	udb.On("Create", mock.Anything, mock.Anything).Return("5fc51f58c72ff10004dca383", nil)

	s := handlers.Signup{DB: db, UDB: udb}

	req, _ := http.NewRequest("POST", "/api/v1/signup/register", registerBody(t, "fixed-token", "hunter22", ""))
	rr := httptest.NewRecorder()
	http.HandlerFunc(s.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
