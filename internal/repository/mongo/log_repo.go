package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"grindx/fittrack/internal/domain"
	"grindx/fittrack/internal/repository"
)

const logCollectionName = "logs"

// mongoLogRepository implements repository.LogRepository
type mongoLogRepository struct {
	collection *mongo.Collection
}

// NewMongoLogRepository creates a new log repository backed by MongoDB.
func NewMongoLogRepository(db *mongo.Database) repository.LogRepository {
	return &mongoLogRepository{
		collection: db.Collection(logCollectionName),
	}
}

// Create inserts a new log into the database.
func (r *mongoLogRepository) Create(ctx context.Context, log *domain.Log) (primitive.ObjectID, error) {
	if log.WorkoutID == primitive.NilObjectID || log.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("log workout ID and user ID are required")
	}

	log.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now
	if log.CompletedAt.IsZero() {
		log.CompletedAt = now
	}

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a log by its ID.
func (r *mongoLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Log, error) {
	var log domain.Log
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// Update applies a partial update to a log. Only fields present in the
// update document are written; UserID and WorkoutID are never touched.
func (r *mongoLogRepository) Update(ctx context.Context, id primitive.ObjectID, update repository.LogUpdate) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.CompletedAt != nil {
		set["completedAt"] = *update.CompletedAt
	}
	if update.Duration != nil {
		set["duration"] = *update.Duration
	}
	if update.Notes != nil {
		set["notes"] = *update.Notes
	}
	if update.IsShared != nil {
		set["isShared"] = *update.IsShared
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a log by ID.
func (r *mongoLogRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns one page of logs, most recently completed first, plus the
// total number of documents matching the filter.
func (r *mongoLogRepository) List(ctx context.Context, filter repository.LogFilter, page, limit int) ([]domain.Log, int64, error) {
	page, limit = repository.NormalizePageLimit(page, limit)

	query := bson.M{}
	if filter.UserID != nil {
		query["userId"] = *filter.UserID
	}
	if filter.SharedOnly {
		query["isShared"] = true
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "completedAt", Value: -1}}).
		SetSkip(int64(repository.Skip(page, limit))).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	logs := []domain.Log{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, 0, err
	}
	if err = cursor.Err(); err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// AddLike records that a user liked a log. $addToSet keeps the like set
// free of duplicates even under concurrent taps.
func (r *mongoLogRepository) AddLike(ctx context.Context, logID, userID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": logID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RemoveLike withdraws a user's like from a log.
func (r *mongoLogRepository) RemoveLike(ctx context.Context, logID, userID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"likes": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": logID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddComment appends a comment to a log.
func (r *mongoLogRepository) AddComment(ctx context.Context, logID primitive.ObjectID, comment domain.Comment) error {
	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": logID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureLogIndexes creates necessary indexes for the logs collection.
func EnsureLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// A user's own history, newest completion first
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "completedAt", Value: -1}},
		},
		{
			// Community feed
			Keys: bson.D{{Key: "isShared", Value: 1}, {Key: "completedAt", Value: -1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logIndexError(collection.Name(), err)
	}
}
