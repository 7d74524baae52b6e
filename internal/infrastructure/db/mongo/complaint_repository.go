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
)

const collectionComplaints = "complaints"

type ComplaintRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewComplaintRepository(db *mongo.Database) *ComplaintRepository {
	return &ComplaintRepository{
		col: db.Collection(collectionComplaints),
		now: func() time.Time { return time.Now().UTC() },
	}
}

type mongoComplaint struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId"`
	Category    string             `bson:"category"`
	Subcategory string             `bson:"subcategory"`
	Description string             `bson:"description"`
	FileURL     string             `bson:"fileUrl,omitempty"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
	Revision    string             `bson:"revision,omitempty"`

	// Populated only by the ListAll pipeline.
	Owner *mongoUser `bson:"owner,omitempty"`
}

func (mc *mongoComplaint) toDomain() *domain.Complaint {
	return &domain.Complaint{
		ID:          mc.ID.Hex(),
		UserID:      hexOrEmpty(mc.UserID),
		Category:    mc.Category,
		Subcategory: mc.Subcategory,
		Description: mc.Description,
		FileURL:     mc.FileURL,
		Status:      mc.Status,
		CreatedAt:   mc.CreatedAt.UTC(),
		UpdatedAt:   mc.UpdatedAt.UTC(),
		Revision:    mc.Revision,
	}
}

// Create inserts a new complaint document.
func (r *ComplaintRepository) Create(ctx context.Context, c *domain.Complaint) (*domain.Complaint, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner, ok := objectID(c.UserID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	doc := mongoComplaint{
		ID:          primitive.NewObjectID(),
		UserID:      owner,
		Category:    c.Category,
		Subcategory: c.Subcategory,
		Description: c.Description,
		FileURL:     c.FileURL,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert complaint: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateStatus sets the status, bumps updatedAt and issues a new revision
// atomically, returning the
// document as stored after the write.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id, status string) (*domain.Complaint, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrComplaintNotFound
	}

	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": r.now(),
		"revision":  primitive.NewObjectID().Hex(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mc mongoComplaint
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrComplaintNotFound
		}
		return nil, fmt.Errorf("update complaint status: %w", err)
	}
	return mc.toDomain(), nil
}

// ListByOwner returns the owner's complaints newest first. limit <= 0 means
// no limit.
func (r *ComplaintRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.Complaint, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out := []*domain.Complaint{}
	oid, ok := objectID(ownerID)
	if !ok {
		return out, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, bson.M{"userId": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var mc mongoComplaint
		if err := cur.Decode(&mc); err != nil {
			return nil, fmt.Errorf("decode complaint: %w", err)
		}
		out = append(out, mc.toDomain())
	}
	return out, cur.Err()
}

// ListAll returns every complaint newest first with its owner populated.
// Complaints whose owner no longer exists are returned with a nil owner.
func (r *ComplaintRepository) ListAll(ctx context.Context) ([]*domain.ComplaintWithOwner, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "userId",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$owner", "preserveNullAndEmptyArrays": true}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list all complaints: %w", err)
	}
	defer cur.Close(ctx)

	out := []*domain.ComplaintWithOwner{}
	for cur.Next(ctx) {
		var mc mongoComplaint
		if err := cur.Decode(&mc); err != nil {
			return nil, fmt.Errorf("decode complaint: %w", err)
		}
		item := &domain.ComplaintWithOwner{Complaint: *mc.toDomain()}
		if mc.Owner != nil {
			item.Owner = domain.OwnerOf(mc.Owner.toDomain())
		}
		out = append(out, item)
	}
	return out, cur.Err()
}

// EnsureIndexes creates the indexes used by the owner and admin listings.
func (r *ComplaintRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
