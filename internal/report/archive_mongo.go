package report

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const archiveCollection = "generated_reports"

type mongoArchive struct {
	coll *mongo.Collection
}

func NewMongoArchive(db *mongo.Database) Archive {
	return &mongoArchive{coll: db.Collection(archiveCollection)}
}

func (a *mongoArchive) Save(ctx context.Context, r *Report) error {
	if _, err := a.coll.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("failed to archive report: %w", err)
	}
	return nil
}

func (a *mongoArchive) List(ctx context.Context, reportType string, limit int64) ([]*Report, error) {
	filter := bson.M{}
	if reportType != "" {
		filter["type"] = reportType
	}
	opts := options.Find().SetSort(bson.D{{Key: "generated_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := a.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query report archive: %w", err)
	}
	defer cur.Close(ctx)

	var reports []*Report
	if err := cur.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode archived reports: %w", err)
	}
	return reports, nil
}
