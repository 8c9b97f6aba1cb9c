package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/audioshop/audioshop-api/internal/model"
)

// CommentRepo persists comment documents.
type CommentRepo struct{ Comments *mongo.Collection }

func NewCommentRepo(comments *mongo.Collection) *CommentRepo {
	return &CommentRepo{Comments: comments}
}

// Create inserts a comment and populates its generated id.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	c.CreatedAt = time.Now().UTC()
	res, err := r.Comments.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	c.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// GetByID fetches a comment by id.
func (r *CommentRepo) GetByID(ctx context.Context, id bson.ObjectID) (model.Comment, error) {
	var c model.Comment
	err := r.Comments.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Comment{}, ErrNotFound
	}
	return c, err
}

// Delete removes one comment.
func (r *CommentRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.Comments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteManyByIDs bulk-deletes the given comments. Deleting an empty set is
// a no-op.
func (r *CommentRepo) DeleteManyByIDs(ctx context.Context, ids []bson.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.Comments.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

// ListWithAuthors resolves the given comment ids together with the authors'
// usernames via a single lookup pass. Only the username leaves the users
// collection.
func (r *CommentRepo) ListWithAuthors(ctx context.Context, ids []bson.ObjectID) ([]model.CommentWithAuthor, error) {
	if len(ids) == 0 {
		return []model.CommentWithAuthor{}, nil
	}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "authorDoc"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$authorDoc"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "comment", Value: 1},
			{Key: "ratings", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "author", Value: "$authorDoc.username"},
		}}},
	}
	cur, err := r.Comments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []model.CommentWithAuthor{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
