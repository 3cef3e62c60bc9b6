package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/printops/plate-service/internal/domain/dto"
	"github.com/printops/plate-service/internal/jobs"
	"github.com/printops/plate-service/internal/service"
)

// Handler provides HTTP handlers for the plate optimization routes.
type Handler struct {
	queue   *jobs.Queue
	history service.HistoryService
}

// NewHandler creates a new Handler instance. history may be nil when run
// history persistence is disabled.
func NewHandler(queue *jobs.Queue, history service.HistoryService) *Handler {
	return &Handler{queue: queue, history: history}
}

// Optimize handles POST /api/optimize requests.
//
// @Summary      Submit a plate optimization job
// @Description  Enqueues a plate assignment optimization for the given tags and returns a task ID for polling. The solver assigns tags to plates and chooses ups and sheet counts per plate to minimize total sheets printed.
// @Tags         Optimization
// @Accept       json
// @Produce      json
// @Param        request body dto.OptimizeRequest true "Tags and plate configuration"
// @Success      202 {object} dto.SuccessResponse{data=dto.JobAccepted} "Job accepted"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      429 {object} dto.ErrorResponse "Too many requests - rate limit exceeded"
// @Failure      503 {object} dto.ErrorResponse "Service unavailable - job queue full"
// @Router       /api/optimize [post]
func (h *Handler) Optimize(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequestAndValidate[dto.OptimizeRequest](c)
	if err != nil {
		builder.Error(http.StatusBadRequest, err.Error(), err)
		return
	}

	id, err := h.queue.Enqueue(req.ToInstance())
	if err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			builder.ErrorWithCode(http.StatusServiceUnavailable, dto.ErrCodeQueueFull, "Job queue is full, retry later", err)
			return
		}
		builder.Error(http.StatusInternalServerError, "Failed to enqueue job", err)
		return
	}

	builder.SuccessAccepted(dto.JobAccepted{TaskID: id})
}

// JobStatus handles GET /api/jobs/:id requests.
//
// @Summary      Poll an optimization job
// @Description  Returns the job's lifecycle state. Running jobs answer 202, completed jobs answer 200 with the optimization result, failed jobs answer 500 with the failure text.
// @Tags         Optimization
// @Produce      json
// @Param        id path string true "Task ID returned by /api/optimize"
// @Success      200 {object} dto.SuccessResponse{data=dto.JobStatus} "Job completed"
// @Success      202 {object} dto.SuccessResponse{data=dto.JobStatus} "Job still running"
// @Failure      404 {object} dto.ErrorResponse "Unknown task ID"
// @Failure      500 {object} dto.SuccessResponse{data=dto.JobStatus} "Job failed"
// @Router       /api/jobs/{id} [get]
func (h *Handler) JobStatus(c *gin.Context) {
	builder := NewResponseBuilder(c)

	job, ok := h.queue.Get(c.Param("id"))
	if !ok {
		builder.Error(http.StatusNotFound, "Unknown task ID", nil)
		return
	}

	status := dto.JobStatus{Status: string(job.State)}
	switch job.State {
	case jobs.StateCompleted:
		result := dto.NewOptimizationResult(job.Solution)
		status.Result = &result
		builder.SuccessOK(status)
	case jobs.StateFailed:
		status.Error = job.Error
		builder.Success(http.StatusInternalServerError, status)
	default:
		builder.SuccessAccepted(status)
	}
}

// ListRuns handles GET /api/runs requests.
//
// @Summary      List recent optimization runs
// @Description  Returns persisted summaries of finished runs, newest first. Only available when MongoDB persistence is enabled.
// @Tags         Optimization
// @Produce      json
// @Param        limit query int false "Maximum number of runs to return (default 50, max 200)"
// @Param        skip  query int false "Number of runs to skip"
// @Success      200 {object} dto.SuccessResponse "Recent runs"
// @Failure      503 {object} dto.ErrorResponse "Run history persistence disabled"
// @Router       /api/runs [get]
func (h *Handler) ListRuns(c *gin.Context) {
	builder := NewResponseBuilder(c)

	if h.history == nil {
		builder.Error(http.StatusServiceUnavailable, "Run history persistence is disabled", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))

	runs, err := h.history.ListRuns(c.Request.Context(), limit, skip)
	if err != nil {
		builder.Error(http.StatusInternalServerError, "Failed to query run history", err)
		return
	}

	builder.SuccessOK(runs)
}
