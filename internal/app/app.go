// Package app provides application initialization and dependency injection.
package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/printops/plate-service/config"
	"github.com/printops/plate-service/internal/http"
	"github.com/printops/plate-service/internal/jobs"
	"github.com/printops/plate-service/internal/repository"
	"github.com/printops/plate-service/internal/service"
)

// App holds the wired application and its background components.
type App struct {
	Router *gin.Engine

	queue *jobs.Queue
	db    *repository.MongoDB
}

// InitializeApp creates and wires all application dependencies and starts
// the job queue workers.
func InitializeApp(cfg config.Config) *App {
	// Logger first, everything else logs through it.
	InitializeLogger()

	dbComponents := InitializeDatabase(cfg.Database)

	var history service.HistoryService
	if dbComponents != nil {
		history = dbComponents.History
	}
	services := InitializeServices(cfg.Solver, cfg.Jobs, history)
	services.Queue.Start()

	routerComponents := InitializeRouter(services, dbComponents, cfg)
	router := http.NewRouter(routerComponents.Handler, routerComponents.HealthHandler, routerComponents.Config)

	a := &App{
		Router: router,
		queue:  services.Queue,
	}
	if dbComponents != nil {
		a.db = dbComponents.DB
	}
	return a
}

// Shutdown drains the job queue and closes the database connection.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.queue.Shutdown(ctx)
	if a.db != nil {
		if closeErr := a.db.Close(ctx); err == nil {
			err = closeErr
		}
	}
	return err
}
