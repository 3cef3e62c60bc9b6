// Package main is the entry point for the plate-service application.
//
// @title           Plate Service API
// @version         1.0.0
// @description     API for optimizing label tag placement on printing plates.
//
//	The service assigns tags to plates and chooses ups and sheet counts per
//	plate so the total number of sheets printed is minimized.
//
// @contact.name   API Support
// @contact.email  support@example.com
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
// @description                 API key for authentication. Required if authentication is enabled.
//
// @tag.name        Optimization
// @tag.description Plate optimization operations
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	_ "github.com/printops/plate-service/docs" // swagger docs

	"github.com/rs/zerolog/log"

	"github.com/printops/plate-service/config"
	"github.com/printops/plate-service/internal/app"
)

func main() {
	cfg := config.Load()

	application := app.InitializeApp(cfg)
	server := app.NewServer(application, cfg.Server.Port)

	if err := server.Run(); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
