package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// @title Fitness Social API
// @version 1.0
// @description Weekly workout planning, a shared workout feed and campus dining meal suggestions.
// @contact.name API Support
// @contact.email support@example.com
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("fitness-server: %s", err)
		os.Exit(1)
	}
}
