package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RunDocument represents a finished optimization run in MongoDB.
type RunDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JobID           string             `bson:"job_id" json:"job_id"`
	Status          string             `bson:"status" json:"status"`
	TagCount        int                `bson:"tag_count" json:"tag_count"`
	PlateCount      int                `bson:"plate_count" json:"plate_count"`
	UpsPerPlate     int                `bson:"ups_per_plate" json:"ups_per_plate"`
	TotalSheets     int                `bson:"total_sheets,omitempty" json:"total_sheets,omitempty"`
	TotalProduced   int                `bson:"total_produced,omitempty" json:"total_produced,omitempty"`
	WastePercentage float64            `bson:"waste_percentage,omitempty" json:"waste_percentage,omitempty"`
	DurationMS      int64              `bson:"duration_ms" json:"duration_ms"`
	Error           string             `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// RunsRepositoryInterface defines run history persistence operations.
type RunsRepositoryInterface interface {
	Create(ctx context.Context, run *RunDocument) error
	Query(ctx context.Context, opts RunQueryOptions) ([]*RunDocument, error)
}

// NewRunsRepository creates a new runs repository.
func NewRunsRepository(db *MongoDB) *MongoRunsRepository {
	return &MongoRunsRepository{db: db}
}

// MongoRunsRepository is the MongoDB-backed implementation of RunsRepositoryInterface.
type MongoRunsRepository struct {
	db *MongoDB
}

// Create inserts a finished run document.
func (r *MongoRunsRepository) Create(ctx context.Context, run *RunDocument) error {
	if run.ID.IsZero() {
		run.ID = primitive.NewObjectID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	_, err := r.db.Runs.InsertOne(ctx, run)
	return err
}

// RunQueryOptions provides filters for querying run history.
type RunQueryOptions struct {
	JobID  string
	Status string
	Limit  int
	Skip   int
}

// Query returns run documents matching the filters, newest first.
func (r *MongoRunsRepository) Query(ctx context.Context, opts RunQueryOptions) ([]*RunDocument, error) {
	filter := bson.M{}
	if opts.JobID != "" {
		filter["job_id"] = opts.JobID
	}
	if opts.Status != "" {
		filter["status"] = opts.Status
	}

	findOptions := options.Find().SetSort(bson.M{"created_at": -1})
	if opts.Limit > 0 {
		findOptions.SetLimit(int64(opts.Limit))
	}
	if opts.Skip > 0 {
		findOptions.SetSkip(int64(opts.Skip))
	}

	cursor, err := r.db.Runs.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var runs []*RunDocument
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}
