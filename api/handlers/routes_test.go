package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cohortly/cohort-api/api/handlers"
)

// The token route must sit behind the auth middleware so credentials are
// verified before a bearer token is minted.
func TestAuthTokenRouteRequiresAuthentication(t *testing.T) {
	a := handlers.App{}
	router := a.New()

	req, err := http.NewRequest("POST", "/api/v1/auth/token", nil)
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	// the middleware body, not the handler's own basic-auth failure
	assert.Equal(t, `{"error": "unauthorized"}`, rr.Body.String())
}

func TestProtectedInvitationRoutesRequireAuthentication(t *testing.T) {
	a := handlers.App{}
	router := a.New()

	routes := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/invitations/upload-csv"},
		{"GET", "/api/v1/invitations"},
		{"GET", "/api/v1/invitations/5fc51f58c72ff10004dca382"},
		{"DELETE", "/api/v1/invitations/5fc51f58c72ff10004dca382"},
		{"POST", "/api/v1/invitations/5fc51f58c72ff10004dca382/resend"},
	}
	for _, route := range routes {
		req, err := http.NewRequest(route.method, route.path, nil)
		if err != nil {
			t.Fatal(err)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", route.method, route.path)
	}
}
