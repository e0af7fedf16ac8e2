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

const attachmentCollectionName = "attachments"

// mongoAttachmentRepository implements repository.AttachmentRepository
type mongoAttachmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAttachmentRepository creates a new attachment repository backed by MongoDB.
func NewMongoAttachmentRepository(db *mongo.Database) repository.AttachmentRepository {
	return &mongoAttachmentRepository{
		collection: db.Collection(attachmentCollectionName),
	}
}

// Upsert stores attachment metadata for a log, replacing any previous
// attachment. One attachment per log, enforced by the unique logId index.
func (r *mongoAttachmentRepository) Upsert(ctx context.Context, attachment *domain.Attachment) (primitive.ObjectID, error) {
	if attachment.LogID == primitive.NilObjectID || attachment.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("attachment log ID and object key are required")
	}

	now := time.Now().UTC()
	filter := bson.M{"logId": attachment.LogID}
	update := bson.M{
		"$set": bson.M{
			"userId":      attachment.UserID,
			"objectKey":   attachment.ObjectKey,
			"fileName":    attachment.FileName,
			"contentType": attachment.ContentType,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"logId":     attachment.LogID,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored domain.Attachment
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return primitive.NilObjectID, err
	}

	*attachment = stored
	return stored.ID, nil
}

// GetByLogID retrieves the attachment metadata for a log, if any.
func (r *mongoAttachmentRepository) GetByLogID(ctx context.Context, logID primitive.ObjectID) (*domain.Attachment, error) {
	var attachment domain.Attachment
	filter := bson.M{"logId": logID}

	err := r.collection.FindOne(ctx, filter).Decode(&attachment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

// DeleteByLogID removes attachment metadata for a log. Missing metadata is
// not an error; most logs have no attachment.
func (r *mongoAttachmentRepository) DeleteByLogID(ctx context.Context, logID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"logId": logID})
	return err
}

// EnsureAttachmentIndexes creates necessary indexes for the attachments collection.
func EnsureAttachmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "logId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logIndexError(collection.Name(), err)
	}
}
