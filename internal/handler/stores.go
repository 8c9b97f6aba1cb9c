package handler

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/audioshop/audioshop-api/internal/media"
	"github.com/audioshop/audioshop-api/internal/model"
	"github.com/audioshop/audioshop-api/internal/queue"
	"github.com/audioshop/audioshop-api/internal/repository"
)

// ProductUpdate aliases the repository's partial-update carrier so fakes and
// handlers share one definition.
type ProductUpdate = repository.ProductUpdate

// The handler layer defines the store interfaces it consumes; the mongo
// repositories satisfy them and tests substitute fakes. Context values bound
// to a transaction session make the same methods transactional when invoked
// from inside an atomic unit.

// UserStore covers the user mutations handlers need.
type UserStore interface {
	Create(ctx context.Context, username, email, password string, cost int) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByRefreshToken(ctx context.Context, token string) (model.User, error)
	SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error
	ClearRefreshToken(ctx context.Context, id bson.ObjectID) error
	PushProductID(ctx context.Context, id, productID bson.ObjectID) error
	PullProductID(ctx context.Context, id, productID bson.ObjectID) error
	PushCommentID(ctx context.Context, id, commentID bson.ObjectID) error
	PullCommentID(ctx context.Context, id, commentID bson.ObjectID) error
	PullCommentIDsFromAll(ctx context.Context, commentIDs []bson.ObjectID) error
}

// ProductStore covers catalog reads and writes.
type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id bson.ObjectID) (model.Product, error)
	Update(ctx context.Context, id bson.ObjectID, upd ProductUpdate) (model.Product, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	List(ctx context.Context, ids []bson.ObjectID) ([]model.ProductSummary, error)
	ListByCategory(ctx context.Context, category string) ([]model.ProductSummary, error)
	PushCommentID(ctx context.Context, id, commentID bson.ObjectID) error
	PullCommentID(ctx context.Context, id, commentID bson.ObjectID) error
}

// CommentStore covers comment reads and writes.
type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id bson.ObjectID) (model.Comment, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	DeleteManyByIDs(ctx context.Context, ids []bson.ObjectID) error
	ListWithAuthors(ctx context.Context, ids []bson.ObjectID) ([]model.CommentWithAuthor, error)
}

// MediaService is the media lifecycle surface handlers call.
type MediaService interface {
	Allocate(ctx context.Context, files []media.File) ([]string, error)
	Revoke(ctx context.Context, keys []string) error
	ResolveForRead(ctx context.Context, key string) (string, error)
}

// EventPublisher emits checkout events; failures are logged by the
// implementation and tolerated by callers.
type EventPublisher interface {
	PublishCheckoutStarted(ctx context.Context, ev queue.CheckoutStartedEvent) error
}
