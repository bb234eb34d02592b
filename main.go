package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/cohortly/cohort-api/api/handlers"

	"go.uber.org/zap"

	"github.com/cohortly/cohort-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	err := a.Initialize() //initialize database and router
	if err != nil {
		log.Fatal(err)
	}

	s := a.StartScheduler() //start background invitation jobs
	defer s.Stop()

	zap.S().Infow("cohort-api is up and running",
		"port", a.Config.Port,
		"url", a.Config.BaseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", a.Config.Port), a.Router))
}
