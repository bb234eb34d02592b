// Package docs Cohortly API.
//
// Documentation of the Cohortly invitation API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://api.cohortly.dev
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/cohortly/cohort-api/api/handlers"
	"github.com/cohortly/cohort-api/invitations"
	"github.com/cohortly/cohort-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body handlers.HealthCheckResponse
}

// swagger:route POST /api/v1/invitations/upload-csv invitations uploadInvitationsCSV
// Uploads a CSV of candidates and generates invitations.
// responses:
//   202: uploadSummaryResponse
//   400: errorMessageResponse
//   422: errorMessageResponse

// Shows what happened to each row of the uploaded CSV.
// swagger:response uploadSummaryResponse
type uploadSummaryResponseWrapper struct {
	// in:body
	Body invitations.Summary
}

// The error body written by failing endpoints.
// swagger:response errorMessageResponse
type errorMessageResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
