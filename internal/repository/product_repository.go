package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/audioshop/audioshop-api/internal/model"
)

// ProductRepo persists product documents.
type ProductRepo struct{ Products *mongo.Collection }

func NewProductRepo(products *mongo.Collection) *ProductRepo {
	return &ProductRepo{Products: products}
}

// Create inserts a product and populates its generated id.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	p.CreatedAt = time.Now().UTC()
	if p.CommentIDs == nil {
		p.CommentIDs = []bson.ObjectID{}
	}
	if p.Gallery == nil {
		p.Gallery = []string{}
	}
	res, err := r.Products.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	p.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// GetByID fetches a product by id.
func (r *ProductRepo) GetByID(ctx context.Context, id bson.ObjectID) (model.Product, error) {
	var p model.Product
	err := r.Products.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// ProductUpdate carries the mutable product fields for an in-place update.
// Nil pointers leave the stored value untouched; Image/Gallery are only set
// when the corresponding upload replaced the stored references.
type ProductUpdate struct {
	Name        *string
	Category    *string
	Description *string
	Price       *float64
	Features    *string
	Image       *string
	Gallery     []string
}

// Update applies the non-nil fields and stamps updatedAt, returning the
// updated document.
func (r *ProductRepo) Update(ctx context.Context, id bson.ObjectID, upd ProductUpdate) (model.Product, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Features != nil {
		set["features"] = *upd.Features
	}
	if upd.Image != nil {
		set["image"] = *upd.Image
	}
	if upd.Gallery != nil {
		set["gallery"] = upd.Gallery
	}

	var p model.Product
	err := r.Products.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// Delete removes a product document.
func (r *ProductRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.Products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns summary projections of all products, optionally restricted to
// the given ids (a caller-supplied favorites filter). The recently-added
// flag is derived while scanning; full documents are never returned in list
// form.
func (r *ProductRepo) List(ctx context.Context, ids []bson.ObjectID) ([]model.ProductSummary, error) {
	filter := bson.M{}
	if ids != nil {
		filter["_id"] = bson.M{"$in": ids}
	}
	cur, err := r.Products.Find(ctx, filter, options.Find().SetProjection(bson.M{
		"name":      1,
		"category":  1,
		"image":     1,
		"createdAt": 1,
	}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	now := time.Now().UTC()
	summaries := []model.ProductSummary{}
	for cur.Next(ctx) {
		var s model.ProductSummary
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		s.IsNew = now.Sub(s.CreatedAt) < 7*24*time.Hour
		summaries = append(summaries, s)
	}
	return summaries, cur.Err()
}

// ListByCategory filters server-side and computes the recently-added flag in
// the same aggregation pass, sorting recent products first. The sort on the
// derived boolean is stable with respect to natural order.
func (r *ProductRepo) ListByCategory(ctx context.Context, category string) ([]model.ProductSummary, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "category", Value: category}}}},
		bson.D{{Key: "$addFields", Value: bson.D{{Key: "isNew", Value: bson.D{{Key: "$gte", Value: bson.A{
			bson.D{{Key: "$dateAdd", Value: bson.D{
				{Key: "startDate", Value: "$createdAt"},
				{Key: "unit", Value: "week"},
				{Key: "amount", Value: 1},
			}}},
			time.Now().UTC(),
		}}}}}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "category", Value: 1},
			{Key: "image", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "isNew", Value: 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "isNew", Value: -1}}}},
	}
	cur, err := r.Products.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	summaries := []model.ProductSummary{}
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// PushCommentID appends a comment to the product's comment list.
func (r *ProductRepo) PushCommentID(ctx context.Context, id, commentID bson.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$push": bson.M{"comments": commentID}})
}

// PullCommentID removes a comment from the product's comment list.
func (r *ProductRepo) PullCommentID(ctx context.Context, id, commentID bson.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$pull": bson.M{"comments": commentID}})
}

func (r *ProductRepo) updateByID(ctx context.Context, id bson.ObjectID, update bson.M) error {
	res, err := r.Products.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
