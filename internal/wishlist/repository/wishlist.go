package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	wishlisterrors "srida/internal/wishlist/errors"
	"srida/pkg/config"
	"srida/pkg/model"
)

const (
	CollectionName = "Wishlists"
)

type WishlistRepository interface {
	FindByBuyer(ctx context.Context, buyerID string) (*model.Wishlist, error)
	AddService(ctx context.Context, buyerID, serviceID string) error
	RemoveService(ctx context.Context, buyerID, serviceID string) error
	Clear(ctx context.Context, buyerID string) error
}

type mongoWishlistRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoWishlistRepository(cfg *config.Config) WishlistRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWishlistRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoWishlistRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoWishlistRepository) FindByBuyer(ctx context.Context, buyerID string) (*model.Wishlist, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var wishlist model.Wishlist
	err := r.collection.FindOne(ctx, bson.M{"buyer_id": buyerID}).Decode(&wishlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, wishlisterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find wishlist: %w", err)
	}

	return &wishlist, nil
}

// AddService appends the service in one conditional upsert. The filter
// only matches a document that does not yet contain the service, so a
// duplicate add matches nothing and trips the unique buyer_id index on
// the upsert path instead. Both outcomes mean "already present".
func (r *mongoWishlistRepository) AddService(ctx context.Context, buyerID, serviceID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"buyer_id":            buyerID,
		"services.service_id": bson.M{"$ne": serviceID},
	}
	update := bson.M{
		"$push": bson.M{"services": model.WishlistEntry{
			ServiceID: serviceID,
			AddedAt:   time.Now().UTC().Truncate(time.Millisecond),
		}},
		"$setOnInsert": bson.M{
			"created_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return wishlisterrors.ErrDuplicate
		}
		return fmt.Errorf("failed to add service to wishlist: %w", err)
	}
	return nil
}

// RemoveService is idempotent: removing an absent entry, or pulling
// from a wishlist that was never materialized, is a no-op success.
func (r *mongoWishlistRepository) RemoveService(ctx context.Context, buyerID, serviceID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"buyer_id": buyerID},
		bson.M{"$pull": bson.M{"services": bson.M{"service_id": serviceID}}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove service from wishlist: %w", err)
	}
	return nil
}

func (r *mongoWishlistRepository) Clear(ctx context.Context, buyerID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"buyer_id": buyerID},
		bson.M{"$set": bson.M{"services": []model.WishlistEntry{}}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear wishlist: %w", err)
	}
	return nil
}
