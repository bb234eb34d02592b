package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/cohortly/cohort-api/config"
	"github.com/cohortly/cohort-api/databases"
	"github.com/cohortly/cohort-api/invitations"
	"github.com/cohortly/cohort-api/models"
)

// maxUploadBytes caps the size of an uploaded CSV file.
const maxUploadBytes = 10 << 20 // 10 MB

// CSVProcessor runs the invitation pipeline for one uploaded file.
type CSVProcessor interface {
	ProcessCSV(ctx context.Context, r io.Reader) (*invitations.Summary, error)
}

// Invitation exported for testing purposes
type Invitation struct {
	DB        databases.InvitationDatabase
	Mailer    invitations.Mailer
	Processor CSVProcessor
}

type invitationResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Cohort    int       `json:"cohort"`
	TokenUsed bool      `json:"tokenUsed"`
	LogState  bool      `json:"logState"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// invitationView omits the token so invite links never leak through list or
// get endpoints.
func invitationView(inv *models.Invitation) invitationResponse {
	return invitationResponse{
		ID:        inv.ID,
		FullName:  inv.FullName,
		Email:     inv.Email,
		Cohort:    inv.Cohort,
		TokenUsed: inv.TokenUsed,
		LogState:  inv.LogState,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
		ExpiresAt: inv.ExpiresAt,
	}
}

// UploadCSVHandler accepts a multipart CSV of candidates, runs the invitation
// pipeline and returns a per-upload summary
func (i Invitation) UploadCSVHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		config.ErrorStatus("missing file field in form", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		config.ErrorStatus("file must have a .csv extension", http.StatusBadRequest, w,
			errors.New("unsupported file type"))
		return
	}

	summary, err := i.Processor.ProcessCSV(r.Context(), file)
	if err != nil {
		var missing *invitations.MissingColumnsError
		if errors.As(err, &missing) {
			config.ErrorStatus("csv is missing required columns", http.StatusUnprocessableEntity, w, err)
			return
		}
		var fieldErr *models.FieldError
		if errors.As(err, &fieldErr) {
			config.ErrorStatus("csv contains an invalid row", http.StatusBadRequest, w, err)
			return
		}
		if errors.Is(err, invitations.ErrInvalidCSV) {
			config.ErrorStatus("failed to parse csv", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to process csv", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(struct {
		Message string               `json:"message"`
		Summary *invitations.Summary `json:"summary"`
	}{
		Message: "Invitations generated successfully",
		Summary: summary,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	w.Write(b)
}

// InvitationsHandler returns all invitations, optionally filtered by cohort
// and state, paged with limit/page
func (i Invitation) InvitationsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	filter := map[string]interface{}{}
	if cohort := r.URL.Query().Get("cohort"); cohort != "" {
		n, err := strconv.Atoi(cohort)
		if err != nil {
			config.ErrorStatus("cohort must be a number", http.StatusBadRequest, w, err)
			return
		}
		filter["cohort"] = n
	}
	switch r.URL.Query().Get("state") {
	case "":
	case "pending":
		filter["token_used"] = false
	case "used":
		filter["token_used"] = true
	default:
		config.ErrorStatus("state must be pending or used", http.StatusBadRequest, w,
			errors.New("unknown state filter"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	zap.S().Debugf("limit: %v, page: %v", limit, page)

	dbResp, err := i.DB.FindAll(r.Context(), filter, databases.NewMongoPaginate(limit, page))
	if err != nil {
		config.ErrorStatus("failed to get invitations", http.StatusNotFound, w, err)
		return
	}

	// Because the frontend requires that we return an empty array and not null
	views := []invitationResponse{}
	for _, inv := range dbResp {
		views = append(views, invitationView(inv))
	}
	b, err := json.Marshal(views)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// InvitationByIDHandler returns an invitation by ID
func (i Invitation) InvitationByIDHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	invID := mux.Vars(r)["invitation_id"]
	zap.S().Debugf("invitation_id: %v", invID)

	inv, found, err := i.DB.FindByID(r.Context(), invID)
	if err != nil {
		if errors.Is(err, databases.ErrMalformedID) {
			config.ErrorStatus("invalid invitation id", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to get invitation by ID", http.StatusInternalServerError, w, err)
		return
	}
	if !found {
		config.ErrorStatus("invitation not found", http.StatusNotFound, w,
			errors.New("no invitation with that id"))
		return
	}

	b, err := json.Marshal(invitationView(inv))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteInvitationByIDHandler deletes an invitation by ID
func (i Invitation) DeleteInvitationByIDHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	invID := mux.Vars(r)["invitation_id"]

	ok, err := i.DB.Delete(r.Context(), invID)
	if err != nil {
		if errors.Is(err, databases.ErrMalformedID) {
			config.ErrorStatus("invalid invitation id", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to delete invitation", http.StatusInternalServerError, w, err)
		return
	}
	if !ok {
		config.ErrorStatus("invitation not found", http.StatusNotFound, w,
			errors.New("no invitation with that id"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}

// ResendInvitationHandler re-sends the invite email for a pending invitation
func (i Invitation) ResendInvitationHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	invID := mux.Vars(r)["invitation_id"]

	inv, found, err := i.DB.FindByID(r.Context(), invID)
	if err != nil {
		if errors.Is(err, databases.ErrMalformedID) {
			config.ErrorStatus("invalid invitation id", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to get invitation by ID", http.StatusInternalServerError, w, err)
		return
	}
	if !found {
		config.ErrorStatus("invitation not found", http.StatusNotFound, w,
			errors.New("no invitation with that id"))
		return
	}
	if inv.TokenUsed {
		config.ErrorStatus("invitation has already been used", http.StatusConflict, w,
			errors.New("invitation token already claimed"))
		return
	}
	if inv.IsExpired(time.Now()) {
		config.ErrorStatus("invitation has expired", http.StatusGone, w,
			errors.New("invitation expired"))
		return
	}

	if err := i.Mailer.SendInvite(r.Context(), inv); err != nil {
		config.ErrorStatus("failed to resend invitation email", http.StatusInternalServerError, w, err)
		return
	}

	_, err = i.DB.Update(r.Context(), inv.ID, map[string]interface{}{
		"updated_at": time.Now(),
	})
	if err != nil {
		zap.S().Errorw("failed to bump invitation after resend",
			"invitationId", inv.ID,
			"error", err)
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"resent": true}`))
}
