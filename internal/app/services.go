// Package app provides service initialization.
package app

import (
	"context"

	"github.com/printops/plate-service/config"
	"github.com/printops/plate-service/internal/jobs"
	"github.com/printops/plate-service/internal/logger"
	"github.com/printops/plate-service/internal/optimizer"
	"github.com/printops/plate-service/internal/service"
)

// ServiceComponents holds the optimization service and its job queue.
type ServiceComponents struct {
	Optimizer *optimizer.Service
	Queue     *jobs.Queue
}

// InitializeServices initializes the optimization service and job queue.
// history may be nil when run history persistence is disabled.
func InitializeServices(solverCfg config.SolverConfig, jobsCfg config.JobsConfig, history service.HistoryService) *ServiceComponents {
	driver := optimizer.NewDriver()
	if solverCfg.Seed != 0 {
		driver.Seed = solverCfg.Seed
	}
	if solverCfg.Workers > 0 {
		driver.Workers = solverCfg.Workers
	}
	if solverCfg.MaxIterations > 0 {
		driver.MaxIterations = solverCfg.MaxIterations
	}

	opts := []optimizer.ServiceOption{
		optimizer.WithDriver(driver),
		optimizer.WithLogger(logger.ForComponent("optimizer")),
	}
	if solverCfg.SheetsMax > 0 {
		opts = append(opts, optimizer.WithSheetsMax(solverCfg.SheetsMax))
	}
	if solverCfg.ImprovementTimeout > 0 {
		opts = append(opts, optimizer.WithServiceImprovementTimeout(solverCfg.ImprovementTimeout))
	}
	opt := optimizer.NewService(opts...)

	queueOpts := []jobs.Option{
		jobs.WithWorkers(jobsCfg.Workers),
		jobs.WithBacklog(jobsCfg.Backlog),
		jobs.WithResultTTL(jobsCfg.ResultTTL),
		jobs.WithQueueLogger(logger.ForComponent("jobs")),
	}
	if history != nil {
		queueOpts = append(queueOpts, jobs.WithCompletionHook(func(job jobs.Job) {
			history.RecordRun(context.Background(), job)
		}))
	}
	queue := jobs.NewQueue(opt, queueOpts...)

	return &ServiceComponents{
		Optimizer: opt,
		Queue:     queue,
	}
}
