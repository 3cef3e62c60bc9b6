// Package model defines the core domain entities for the plate service.
package model

// Tag represents a single print item, distinguished by color and size,
// with a required production quantity. Optional display fields are carried
// through to results untouched; they never influence the optimization.
type Tag struct {
	// Color identifies the tag's color variant.
	Color string `json:"COLOR"`
	// Size identifies the tag's size variant.
	Size string `json:"SIZE"`
	// Quantity is the required number of copies to produce.
	Quantity int `json:"QTY"`
	// Extra holds optional pass-through display fields
	// (ITEM_DESCRIPTION, ITEM_CODE, PRICE, EP_NO, RUN, SHEET, ...).
	Extra map[string]interface{} `json:"-"`
}

// PassthroughFields lists the optional display fields copied verbatim
// from request tags into per-tag results when present.
var PassthroughFields = []string{
	"ITEM_DESCRIPTION",
	"ITEM_CODE",
	"PRICE",
	"EP_NO",
	"RUN",
	"SHEET",
}

// Instance is one complete optimization problem: the tags to place, the
// number of impressions a plate can hold, and the number of plates
// available. Instances are read-only once constructed.
type Instance struct {
	Tags        []Tag
	UpsPerPlate int
	PlateCount  int
}

// LargeInstanceThreshold is the tag count above which the stricter
// minimum-occupancy rule and the improvement-timeout stopping policy apply.
const LargeInstanceThreshold = 100

// Large reports whether the instance crosses the large-instance threshold.
func (inst Instance) Large() bool {
	return len(inst.Tags) > LargeInstanceThreshold
}

// TotalQuantity returns the sum of required quantities over all tags.
func (inst Instance) TotalQuantity() int {
	total := 0
	for _, t := range inst.Tags {
		total += t.Quantity
	}
	return total
}
