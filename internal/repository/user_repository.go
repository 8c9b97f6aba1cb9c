package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/audioshop/audioshop-api/internal/model"
	"github.com/audioshop/audioshop-api/internal/utils"
)

// UserRepo persists user documents. All methods accept the caller's context;
// when that context is bound to a transaction session the writes join the
// transaction, which is how the atomic coordinator threads its handle
// through without the repository knowing about transactions at all.
type UserRepo struct{ Users *mongo.Collection }

func NewUserRepo(users *mongo.Collection) *UserRepo { return &UserRepo{Users: users} }

// Create hashes the password and inserts a new user with the default role.
// The email is normalized to lowercase before insert so the unique index
// catches case-variant duplicates.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		Username:   strings.TrimSpace(username),
		Email:      email,
		Password:   hash,
		Roles:      []string{model.RoleUser},
		ProductIDs: []bson.ObjectID{},
		CommentIDs: []bson.ObjectID{},
		CreatedAt:  time.Now().UTC(),
	}
	res, err := r.Users.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	u.ID = res.InsertedID.(bson.ObjectID)
	return u, nil
}

// GetByEmail fetches a user by normalized email, password hash included.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id bson.ObjectID) (model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByRefreshToken fetches the user whose stored refresh token exactly
// matches the presented one. At most one user can match since issuing a new
// token overwrites the previous value.
func (r *UserRepo) GetByRefreshToken(ctx context.Context, token string) (model.User, error) {
	return r.findOne(ctx, bson.M{"refreshToken": token})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (model.User, error) {
	var u model.User
	err := r.Users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// SetRefreshToken overwrites the user's refresh token slot, invalidating
// whatever token was stored before (last-write-wins between concurrent
// signins).
func (r *UserRepo) SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"refreshToken": token}})
}

// ClearRefreshToken removes the refresh token slot on signout.
func (r *UserRepo) ClearRefreshToken(ctx context.Context, id bson.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$unset": bson.M{"refreshToken": ""}})
}

// PushProductID appends a product to the user's owned list.
func (r *UserRepo) PushProductID(ctx context.Context, id, productID bson.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$push": bson.M{"productsId": productID}})
}

// PullProductID removes a product from the user's owned list.
func (r *UserRepo) PullProductID(ctx context.Context, id, productID bson.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$pull": bson.M{"productsId": productID}})
}

// PushCommentID appends a comment to the user's authored list.
func (r *UserRepo) PushCommentID(ctx context.Context, id, commentID bson.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$push": bson.M{"comments": commentID}})
}

// PullCommentID removes a comment from the user's authored list.
func (r *UserRepo) PullCommentID(ctx context.Context, id, commentID bson.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$pull": bson.M{"comments": commentID}})
}

// PullCommentIDsFromAll strips the given comment ids from every user that
// references any of them. Used by the product cascade delete where comments
// from many different authors disappear at once.
func (r *UserRepo) PullCommentIDsFromAll(ctx context.Context, commentIDs []bson.ObjectID) error {
	if len(commentIDs) == 0 {
		return nil
	}
	_, err := r.Users.UpdateMany(ctx,
		bson.M{"comments": bson.M{"$in": commentIDs}},
		bson.M{"$pull": bson.M{"comments": bson.M{"$in": commentIDs}}},
	)
	return err
}

func (r *UserRepo) updateByID(ctx context.Context, id bson.ObjectID, update bson.M) error {
	res, err := r.Users.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
