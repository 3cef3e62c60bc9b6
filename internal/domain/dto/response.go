package dto

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/printops/plate-service/internal/domain/model"
)

const (
	// ErrCodeInvalidRequest indicates an invalid request.
	ErrCodeInvalidRequest = "invalid_request"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"
	// ErrCodeUnauthorized indicates missing or invalid authentication.
	ErrCodeUnauthorized = "unauthorized"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound = "not_found"
	// ErrCodeRateLimit indicates rate limit exceeded.
	ErrCodeRateLimit = "rate_limit_exceeded"
	// ErrCodeQueueFull indicates the job queue cannot accept more work.
	ErrCodeQueueFull = "queue_full"
	// ErrCodeNoSolution indicates the search found no feasible solution.
	ErrCodeNoSolution = "no_solution"
)

// SuccessResponse wraps successful API responses with metadata.
// @Description Successful API response wrapper
type SuccessResponse struct {
	// Data contains the actual response data.
	Data interface{} `json:"data" swaggertype:"object"`
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name SuccessResponse

// ErrorResponse represents a standardized error response for the API.
// @Description Standardized error response
type ErrorResponse struct {
	Error     string            `json:"error" example:"invalid_request"`
	Message   string            `json:"message,omitempty" example:"plateCount: must be a positive integer"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time         `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name ErrorResponse

// NewError creates a new ErrorResponse with the given code and message.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithRequestID adds a request ID to the error response.
func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

// ErrCodeFromStatus returns the appropriate error code for an HTTP status.
func ErrCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusTooManyRequests:
		return ErrCodeRateLimit
	case http.StatusServiceUnavailable:
		return ErrCodeQueueFull
	default:
		return ErrCodeInternal
	}
}

// JobAccepted is returned when an optimization job has been enqueued.
// @Description Accepted optimization job reference
type JobAccepted struct {
	// TaskID identifies the job for status polling.
	TaskID string `json:"task_id" example:"550e8400-e29b-41d4-a716-446655440000"`
} // @name JobAccepted

// JobStatus reports the lifecycle state of an optimization job.
// @Description Optimization job status
type JobStatus struct {
	// Status is one of queued, initializing, optimizing, completed, failed.
	Status string `json:"status" example:"optimizing"`
	// Result carries the optimization outcome once completed.
	Result *OptimizationResult `json:"result,omitempty"`
	// Error carries the failure text for failed jobs.
	Error string `json:"error,omitempty"`
} // @name JobStatus

// TagResult is one per-tag line of an optimization result. Pass-through
// display fields from the request tag are inlined next to the computed
// fields.
type TagResult struct {
	Color        string
	Size         string
	Quantity     int
	Plate        string
	OptimalUps   int
	SheetsNeeded int
	QtyProduced  int
	Excess       int
	Extra        map[string]interface{}
}

// MarshalJSON flattens the computed fields and the pass-through extras
// into a single object, matching the upstream result contract.
func (r TagResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 8+len(r.Extra))
	out["COLOR"] = r.Color
	out["SIZE"] = r.Size
	out["QTY"] = r.Quantity
	out["PLATE"] = r.Plate
	out["OPTIMAL_UPS"] = r.OptimalUps
	out["SHEETS_NEEDED"] = r.SheetsNeeded
	out["QTY_PRODUCED"] = r.QtyProduced
	out["EXCESS"] = r.Excess
	for k, v := range r.Extra {
		out[k] = v
	}
	return json.Marshal(out)
}

// OptimizationResult is the response payload for a completed job.
// @Description Plate optimization result with per-tag assignments and summary
type OptimizationResult struct {
	Results []TagResult   `json:"results"`
	Summary model.Summary `json:"summary"`
} // @name OptimizationResult

// NewOptimizationResult converts a domain solution into the response
// shape, copying only the recognized pass-through fields.
func NewOptimizationResult(sol *model.Solution) OptimizationResult {
	results := make([]TagResult, 0, len(sol.Assignments))
	for _, a := range sol.Assignments {
		r := TagResult{
			Color:        a.Tag.Color,
			Size:         a.Tag.Size,
			Quantity:     a.Tag.Quantity,
			Plate:        a.Label(),
			OptimalUps:   a.Ups,
			SheetsNeeded: a.Sheets,
			QtyProduced:  a.Produced,
			Excess:       a.Excess,
		}
		for _, field := range model.PassthroughFields {
			if v, ok := a.Tag.Extra[field]; ok {
				if r.Extra == nil {
					r.Extra = make(map[string]interface{})
				}
				r.Extra[field] = v
			}
		}
		results = append(results, r)
	}
	return OptimizationResult{Results: results, Summary: sol.Summary}
}
