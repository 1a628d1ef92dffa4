package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/lirio/internal/domain/models"
)

const reportsCollection = "daily_reports"

// ReportArchive stores end-of-day reports, one document per day.
type ReportArchive interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
	FindDailyReport(ctx context.Context, date string) (models.DailyReport, bool, error)
}

// Repository is the MongoDB-backed ReportArchive.
type Repository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewRepository connects to MongoDB and verifies the connection.
func NewRepository(ctx context.Context, uri string, dbName string) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Repository{
		client:   client,
		dbName:   dbName,
		collName: reportsCollection,
	}, nil
}

func (r *Repository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// SaveDailyReport replaces the report for report.Date, so re-running a day
// overwrites rather than duplicates.
func (r *Repository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	_, err := r.collection().ReplaceOne(ctx,
		bson.M{"date": report.Date},
		report,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save daily report %s: %w", report.Date, err)
	}
	return nil
}

// FindDailyReport loads the report archived for date.
func (r *Repository) FindDailyReport(ctx context.Context, date string) (models.DailyReport, bool, error) {
	var report models.DailyReport
	err := r.collection().FindOne(ctx, bson.M{"date": date}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.DailyReport{}, false, nil
	}
	if err != nil {
		return models.DailyReport{}, false, fmt.Errorf("failed to load daily report %s: %w", date, err)
	}
	return report, true, nil
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
