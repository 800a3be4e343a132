package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"civic-issues-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const IssueCollection = "issues"

// MongoIssueStore keeps issues in a MongoDB collection.
type MongoIssueStore struct {
	coll *mongo.Collection
}

func NewMongoIssueStore(db *mongo.Database) *MongoIssueStore {
	return &MongoIssueStore{coll: db.Collection(IssueCollection)}
}

// EnsureIndexes creates the indexes backing the listing and dashboard queries.
func (s *MongoIssueStore) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "priority", Value: 1}}},
	}
	if _, err := s.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create issue indexes: %w", err)
	}
	return nil
}

func (s *MongoIssueStore) Create(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, issue); err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

func (s *MongoIssueStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find issue %s: %w", id.Hex(), err)
	}
	return &issue, nil
}

func (s *MongoIssueStore) Find(ctx context.Context, query models.IssueQuery) ([]models.Issue, int64, error) {
	query = query.Normalize()
	filter := buildFilter(query.Filter)

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count issues: %w", err)
	}

	findOptions := options.Find().
		SetSort(buildSort(query.Sort)).
		SetSkip(query.Skip()).
		SetLimit(int64(query.Limit))

	issues, err := s.findAll(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func (s *MongoIssueStore) Search(ctx context.Context, text string, limit int) ([]models.Issue, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return s.findAll(ctx, buildSearchFilter(text), findOptions)
}

func (s *MongoIssueStore) Update(ctx context.Context, id primitive.ObjectID, patch models.IssuePatch, at time.Time) (*models.Issue, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": buildSet(patch, at)}, opts).Decode(&issue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update issue %s: %w", id.Hex(), err)
	}
	return &issue, nil
}

func (s *MongoIssueStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete issue %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoIssueStore) CountCreated(ctx context.Context, from, to time.Time) (int64, error) {
	filter := bson.M{}
	if r := createdRange(from, to); len(r) > 0 {
		filter["createdAt"] = r
	}
	count, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count issues: %w", err)
	}
	return count, nil
}

func (s *MongoIssueStore) CountBy(ctx context.Context, field models.GroupField) ([]models.GroupCount, error) {
	cursor, err := s.coll.Aggregate(ctx, groupPipeline(field))
	if err != nil {
		return nil, fmt.Errorf("group issues by %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	groups := make([]models.GroupCount, 0)
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode %s groups: %w", field, err)
	}
	return groups, nil
}

func (s *MongoIssueStore) Latest(ctx context.Context, limit int) ([]models.IssueSummary, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{
			"title":     1,
			"status":    1,
			"category":  1,
			"priority":  1,
			"createdAt": 1,
		})

	cursor, err := s.coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find latest issues: %w", err)
	}
	defer cursor.Close(ctx)

	latest := make([]models.IssueSummary, 0)
	if err := cursor.All(ctx, &latest); err != nil {
		return nil, fmt.Errorf("decode latest issues: %w", err)
	}
	return latest, nil
}

func (s *MongoIssueStore) Geolocated(ctx context.Context, limit int) ([]models.Issue, error) {
	filter := bson.M{
		"location.coordinates": bson.M{"$exists": true, "$ne": nil},
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return s.findAll(ctx, filter, findOptions)
}

func (s *MongoIssueStore) CreatedBetween(ctx context.Context, from, to time.Time) ([]models.Issue, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return s.findAll(ctx, bson.M{"createdAt": createdRange(from, to)}, findOptions)
}

func (s *MongoIssueStore) findAll(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Issue, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := make([]models.Issue, 0)
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return issues, nil
}

func buildFilter(f models.IssueFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.AssignedTo != "" {
		filter["assignedTo"] = f.AssignedTo
	}
	return filter
}

func createdRange(from, to time.Time) bson.M {
	r := bson.M{}
	if !from.IsZero() {
		r["$gte"] = from
	}
	if !to.IsZero() {
		r["$lt"] = to
	}
	return r
}

func buildSearchFilter(text string) bson.M {
	pattern := regexp.QuoteMeta(text)
	return bson.M{
		"$or": []bson.M{
			{"title": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
			{"location.address": bson.M{"$regex": pattern, "$options": "i"}},
		},
	}
}

func buildSort(o models.SortOptions) bson.D {
	if o.Field == models.SortNatural {
		return bson.D{{Key: "$natural", Value: 1}}
	}
	dir := 1
	if o.Desc {
		dir = -1
	}
	return bson.D{{Key: string(o.Field), Value: dir}}
}

func buildSet(patch models.IssuePatch, at time.Time) bson.M {
	set := bson.M{"updatedAt": at}
	if patch.Status.Set {
		set["status"] = patch.Status.Str()
	}
	if patch.Priority.Set {
		set["priority"] = patch.Priority.Str()
	}
	if patch.AssignedTo.Set {
		set["assignedTo"] = patch.AssignedTo.Value
	}
	if patch.AdminNotes.Set {
		set["adminNotes"] = patch.AdminNotes.Str()
	}
	return set
}

func groupPipeline(field models.GroupField) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$" + string(field),
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
}
