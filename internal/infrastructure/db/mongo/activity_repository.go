package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
	"github.com/citizenconnect/complaint-portal/internal/core/ports"
)

const collectionActivities = "dailyactivities"

type ActivityRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{
		col: db.Collection(collectionActivities),
		now: func() time.Time { return time.Now().UTC() },
	}
}

type mongoActivity struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Date        time.Time          `bson:"date"`
	Department  string             `bson:"department"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Image       string             `bson:"image,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"createdBy,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (ma *mongoActivity) toDomain() *domain.DailyActivity {
	return &domain.DailyActivity{
		ID:          ma.ID.Hex(),
		Date:        ma.Date.UTC(),
		Department:  ma.Department,
		Title:       ma.Title,
		Description: ma.Description,
		Image:       ma.Image,
		CreatedBy:   hexOrEmpty(ma.CreatedBy),
		CreatedAt:   ma.CreatedAt.UTC(),
		UpdatedAt:   ma.UpdatedAt.UTC(),
	}
}

func (r *ActivityRepository) Create(ctx context.Context, a *domain.DailyActivity) (*domain.DailyActivity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoActivity{
		ID:          primitive.NewObjectID(),
		Date:        a.Date.UTC(),
		Department:  a.Department,
		Title:       a.Title,
		Description: a.Description,
		Image:       a.Image,
		CreatedAt:   a.CreatedAt.UTC(),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}
	if by, ok := objectID(a.CreatedBy); ok {
		doc.CreatedBy = by
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns activities by date descending together with the total count.
func (r *ActivityRepository) List(ctx context.Context, skip, limit int) ([]*domain.DailyActivity, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	defer cur.Close(ctx)

	out := []*domain.DailyActivity{}
	for cur.Next(ctx) {
		var ma mongoActivity
		if err := cur.Decode(&ma); err != nil {
			return nil, 0, fmt.Errorf("decode activity: %w", err)
		}
		out = append(out, ma.toDomain())
	}
	return out, total, cur.Err()
}

func (r *ActivityRepository) Update(ctx context.Context, id string, patch ports.ActivityPatch) (*domain.DailyActivity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrActivityNotFound
	}

	set := bson.M{"updatedAt": r.now()}
	if patch.Date != nil {
		set["date"] = patch.Date.UTC()
	}
	if patch.Department != nil {
		set["department"] = *patch.Department
	}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ma mongoActivity
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrActivityNotFound
		}
		return nil, fmt.Errorf("update activity: %w", err)
	}
	return ma.toDomain(), nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, ok := objectID(id)
	if !ok {
		return domain.ErrActivityNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrActivityNotFound
	}
	return nil
}

func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "date", Value: -1}}})
	return err
}
