package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/cohortly/cohort-api/api"
	"github.com/cohortly/cohort-api/api/scheduler"
	"github.com/cohortly/cohort-api/config"
	"github.com/cohortly/cohort-api/databases"
	"github.com/cohortly/cohort-api/invitations"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewAdminDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	invDB := databases.NewInvitationDatabase(a.dbHelper)
	mailer := &invitations.SendGridMailer{
		APIKey:     a.Config.SendGridAPIKey,
		Sender:     a.Config.EmailSender,
		SenderName: a.Config.EmailSenderName,
		BaseURL:    a.Config.BaseURL,
	}

	inv := Invitation{
		DB:     invDB,
		Mailer: mailer,
		Processor: &invitations.Processor{
			Store:  invDB,
			Mailer: mailer,
		},
	}
	signup := Signup{DB: invDB, UDB: databases.NewUserDatabase(a.dbHelper)}
	admin := Admin{ADB: databases.NewAdminDatabase(a.dbHelper), JWTSecret: a.Config.JWTSecret}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/admin/login", http.HandlerFunc(admin.AdminLoginHandler)).Methods("POST")

	apiCreate.Handle("/invitations/upload-csv", api.Middleware(http.HandlerFunc(inv.UploadCSVHandler))).Methods("POST")
	apiCreate.Handle("/invitations", api.Middleware(http.HandlerFunc(inv.InvitationsHandler))).Methods("GET")
	apiCreate.Handle("/invitations/{invitation_id}", api.Middleware(http.HandlerFunc(inv.InvitationByIDHandler))).Methods("GET")
	apiCreate.Handle("/invitations/{invitation_id}", api.Middleware(http.HandlerFunc(inv.DeleteInvitationByIDHandler))).Methods("DELETE")
	apiCreate.Handle("/invitations/{invitation_id}/resend", api.Middleware(http.HandlerFunc(inv.ResendInvitationHandler))).Methods("POST")

	apiCreate.Handle("/signup/check", http.HandlerFunc(signup.CheckInvitationHandler)).Methods("GET")
	apiCreate.Handle("/signup/register", http.HandlerFunc(signup.RegisterHandler)).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("cohort-api has connected to the database")

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// StartScheduler wires the background invitation jobs against the live
// database connection and starts them
func (a *App) StartScheduler() *scheduler.Scheduler {
	s := scheduler.NewScheduler(databases.NewInvitationDatabase(a.dbHelper), a.Config)
	s.Start()
	return s
}

// HealthCheckResponse shows the current health of the api. true means it is
// alive, false means it is not.
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
