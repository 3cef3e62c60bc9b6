// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// DTOs are used to decouple the HTTP layer from the domain model,
// providing validation and serialization for API communication.
package dto

import (
	"encoding/json"

	"github.com/printops/plate-service/internal/domain/model"
)

// TagPayload is one tag entry of an optimization request. Unknown keys
// are preserved and echoed back in the corresponding result entries;
// they never influence the optimization.
type TagPayload struct {
	// Color identifies the tag's color variant.
	Color string `json:"COLOR" binding:"required" example:"RED"`
	// Size identifies the tag's size variant.
	Size string `json:"SIZE" binding:"required" example:"M"`
	// Quantity is the required number of copies, greater than zero.
	Quantity int `json:"QTY" binding:"required,gt=0" example:"100" minimum:"1"`
	// Extra holds optional pass-through display fields.
	Extra map[string]interface{} `json:"-"`
}

// tagPayloadKnownKeys are the keys consumed by the optimizer itself.
var tagPayloadKnownKeys = map[string]bool{
	"COLOR": true,
	"SIZE":  true,
	"QTY":   true,
}

// UnmarshalJSON decodes the known fields and captures every other key
// into Extra.
func (t *TagPayload) UnmarshalJSON(data []byte) error {
	type plain TagPayload
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = TagPayload(p)

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if tagPayloadKnownKeys[key] {
			delete(raw, key)
		}
	}
	if len(raw) > 0 {
		t.Extra = raw
	}
	return nil
}

// OptimizeRequest is the JSON request body for the plate optimization
// endpoint.
//
// @Description Request to assign tags onto printing plates with minimal total sheets
type OptimizeRequest struct {
	// Tags are the items to place on plates.
	Tags []TagPayload `json:"tags" binding:"required,min=1,dive"`
	// UpsPerPlate is the number of impressions each plate holds.
	UpsPerPlate int `json:"upsPerPlate" binding:"required,gt=0" example:"8" minimum:"1"`
	// PlateCount is the number of plates available.
	PlateCount int `json:"plateCount" binding:"required,gt=0" example:"4" minimum:"1"`
} // @name OptimizeRequest

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	// ErrNoTags is returned when the request carries no tags.
	ErrNoTags = &ValidationError{Field: "tags", Message: "at least one tag is required"}
	// ErrInvalidUpsPerPlate is returned when upsPerPlate is invalid.
	ErrInvalidUpsPerPlate = &ValidationError{Field: "upsPerPlate", Message: "must be a positive integer"}
	// ErrInvalidPlateCount is returned when plateCount is invalid.
	ErrInvalidPlateCount = &ValidationError{Field: "plateCount", Message: "must be a positive integer"}
	// ErrInvalidQuantity is returned when a tag quantity is invalid.
	ErrInvalidQuantity = &ValidationError{Field: "tags", Message: "every QTY must be a positive integer"}
)

// Validate performs custom validation on the request.
// Returns an error if validation fails, nil otherwise.
func (r *OptimizeRequest) Validate() error {
	if len(r.Tags) == 0 {
		return ErrNoTags
	}
	if r.UpsPerPlate <= 0 {
		return ErrInvalidUpsPerPlate
	}
	if r.PlateCount <= 0 {
		return ErrInvalidPlateCount
	}
	for _, t := range r.Tags {
		if t.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// ToInstance converts the request into a read-only problem instance.
func (r *OptimizeRequest) ToInstance() model.Instance {
	tags := make([]model.Tag, len(r.Tags))
	for i, t := range r.Tags {
		tags[i] = model.Tag{
			Color:    t.Color,
			Size:     t.Size,
			Quantity: t.Quantity,
			Extra:    t.Extra,
		}
	}
	return model.Instance{
		Tags:        tags,
		UpsPerPlate: r.UpsPerPlate,
		PlateCount:  r.PlateCount,
	}
}
