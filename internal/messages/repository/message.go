package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	messageserrors "srida/internal/messages/errors"
	"srida/pkg/config"
	"srida/pkg/model"
	"srida/pkg/query"
)

const (
	CollectionName = "Messages"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	FindByID(ctx context.Context, id string) (*model.Message, error)
	FindAll(ctx context.Context, filter bson.M, sort bson.D, page query.Page) ([]*model.Message, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	MarkRead(ctx context.Context, id string, receiverID string, readAt time.Time) (bool, error)
}

type mongoMessageRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoMessageRepository(cfg *config.Config) MessageRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMessageRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoMessageRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoMessageRepository) Create(ctx context.Context, message *model.Message) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	message.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		message.ID = oid.Hex()
	}
	return nil
}

func (r *mongoMessageRepository) FindByID(ctx context.Context, id string) (*model.Message, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", messageserrors.ErrInvalidID, id)
	}

	var message model.Message
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, messageserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find message: %w", err)
	}

	return &message, nil
}

func (r *mongoMessageRepository) FindAll(ctx context.Context, filter bson.M, sort bson.D, page query.Page) ([]*model.Message, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(sort).
		SetLimit(page.Limit()).
		SetSkip(page.Skip())

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*model.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	return messages, nil
}

func (r *mongoMessageRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// MarkRead flips the unread flag in one conditional write keyed on
// (id, receiver, unread), so the read_at stamp is written exactly once
// no matter how many concurrent reads race. Returns whether this call
// performed the flip.
func (r *mongoMessageRepository) MarkRead(ctx context.Context, id string, receiverID string, readAt time.Time) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", messageserrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":         objectID,
		"receiver_id": receiverID,
		"is_read":     false,
	}
	update := bson.M{"$set": bson.M{
		"is_read": true,
		"read_at": readAt,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark message read: %w", err)
	}
	return result.ModifiedCount > 0, nil
}
