package handler

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/audioshop/audioshop-api/internal/atomic"
	"github.com/audioshop/audioshop-api/internal/config"
	"github.com/audioshop/audioshop-api/internal/media"
	"github.com/audioshop/audioshop-api/internal/model"
	"github.com/audioshop/audioshop-api/internal/repository"
	"github.com/audioshop/audioshop-api/internal/utils"
)

// memDB is a map-backed stand-in for the Mongo repositories, shared by the
// per-collection fakes so cascade flows can be asserted end to end.
type memDB struct {
	users    map[bson.ObjectID]*model.User
	products map[bson.ObjectID]*model.Product
	comments map[bson.ObjectID]*model.Comment
}

func newMemDB() *memDB {
	return &memDB{
		users:    map[bson.ObjectID]*model.User{},
		products: map[bson.ObjectID]*model.Product{},
		comments: map[bson.ObjectID]*model.Comment{},
	}
}

func removeID(ids []bson.ObjectID, id bson.ObjectID) []bson.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// ----- users -----

type memUsers struct{ db *memDB }

func (m *memUsers) Create(ctx context.Context, username, email, password string, cost int) (model.User, error) {
	email = strings.ToLower(email)
	for _, u := range m.db.users {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	u := &model.User{
		ID:         bson.NewObjectID(),
		Username:   username,
		Email:      email,
		Password:   hash,
		Roles:      []string{model.RoleUser},
		ProductIDs: []bson.ObjectID{},
		CommentIDs: []bson.ObjectID{},
		CreatedAt:  time.Now().UTC(),
	}
	m.db.users[u.ID] = u
	return *u, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(email)
	for _, u := range m.db.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id bson.ObjectID) (model.User, error) {
	if u, ok := m.db.users[id]; ok {
		return *u, nil
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) GetByRefreshToken(ctx context.Context, token string) (model.User, error) {
	for _, u := range m.db.users {
		if u.RefreshToken != "" && u.RefreshToken == token {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error {
	u, ok := m.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (m *memUsers) ClearRefreshToken(ctx context.Context, id bson.ObjectID) error {
	u, ok := m.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.RefreshToken = ""
	return nil
}

func (m *memUsers) PushProductID(ctx context.Context, id, productID bson.ObjectID) error {
	u, ok := m.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ProductIDs = append(u.ProductIDs, productID)
	return nil
}

func (m *memUsers) PullProductID(ctx context.Context, id, productID bson.ObjectID) error {
	u, ok := m.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ProductIDs = removeID(u.ProductIDs, productID)
	return nil
}

func (m *memUsers) PushCommentID(ctx context.Context, id, commentID bson.ObjectID) error {
	u, ok := m.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.CommentIDs = append(u.CommentIDs, commentID)
	return nil
}

func (m *memUsers) PullCommentID(ctx context.Context, id, commentID bson.ObjectID) error {
	u, ok := m.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.CommentIDs = removeID(u.CommentIDs, commentID)
	return nil
}

func (m *memUsers) PullCommentIDsFromAll(ctx context.Context, commentIDs []bson.ObjectID) error {
	for _, u := range m.db.users {
		for _, cid := range commentIDs {
			u.CommentIDs = removeID(u.CommentIDs, cid)
		}
	}
	return nil
}

// ----- products -----

type memProducts struct{ db *memDB }

func (m *memProducts) Create(ctx context.Context, p *model.Product) error {
	p.ID = bson.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.CommentIDs == nil {
		p.CommentIDs = []bson.ObjectID{}
	}
	if p.Gallery == nil {
		p.Gallery = []string{}
	}
	cp := *p
	m.db.products[p.ID] = &cp
	return nil
}

func (m *memProducts) GetByID(ctx context.Context, id bson.ObjectID) (model.Product, error) {
	if p, ok := m.db.products[id]; ok {
		return *p, nil
	}
	return model.Product{}, repository.ErrNotFound
}

func (m *memProducts) Update(ctx context.Context, id bson.ObjectID, upd ProductUpdate) (model.Product, error) {
	p, ok := m.db.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Features != nil {
		p.Features = *upd.Features
	}
	if upd.Image != nil {
		p.Image = *upd.Image
	}
	if upd.Gallery != nil {
		p.Gallery = upd.Gallery
	}
	p.UpdatedAt = time.Now().UTC()
	return *p, nil
}

func (m *memProducts) Delete(ctx context.Context, id bson.ObjectID) error {
	if _, ok := m.db.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.db.products, id)
	return nil
}

func (m *memProducts) summarize(p *model.Product) model.ProductSummary {
	return model.ProductSummary{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
		IsNew:     p.RecentlyAdded(time.Now().UTC()),
	}
}

func (m *memProducts) List(ctx context.Context, ids []bson.ObjectID) ([]model.ProductSummary, error) {
	var out []model.ProductSummary
	for _, p := range m.db.products {
		if len(ids) > 0 {
			keep := false
			for _, id := range ids {
				if id == p.ID {
					keep = true
				}
			}
			if !keep {
				continue
			}
		}
		out = append(out, m.summarize(p))
	}
	return out, nil
}

func (m *memProducts) ListByCategory(ctx context.Context, category string) ([]model.ProductSummary, error) {
	var out []model.ProductSummary
	for _, p := range m.db.products {
		if p.Category == category {
			out = append(out, m.summarize(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IsNew && !out[j].IsNew })
	return out, nil
}

func (m *memProducts) PushCommentID(ctx context.Context, id, commentID bson.ObjectID) error {
	p, ok := m.db.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.CommentIDs = append(p.CommentIDs, commentID)
	return nil
}

func (m *memProducts) PullCommentID(ctx context.Context, id, commentID bson.ObjectID) error {
	p, ok := m.db.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.CommentIDs = removeID(p.CommentIDs, commentID)
	return nil
}

// ----- comments -----

type memComments struct{ db *memDB }

func (m *memComments) Create(ctx context.Context, c *model.Comment) error {
	c.ID = bson.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	cp := *c
	m.db.comments[c.ID] = &cp
	return nil
}

func (m *memComments) GetByID(ctx context.Context, id bson.ObjectID) (model.Comment, error) {
	if c, ok := m.db.comments[id]; ok {
		return *c, nil
	}
	return model.Comment{}, repository.ErrNotFound
}

func (m *memComments) Delete(ctx context.Context, id bson.ObjectID) error {
	if _, ok := m.db.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.db.comments, id)
	return nil
}

func (m *memComments) DeleteManyByIDs(ctx context.Context, ids []bson.ObjectID) error {
	for _, id := range ids {
		delete(m.db.comments, id)
	}
	return nil
}

func (m *memComments) ListWithAuthors(ctx context.Context, ids []bson.ObjectID) ([]model.CommentWithAuthor, error) {
	out := []model.CommentWithAuthor{}
	for _, id := range ids {
		c, ok := m.db.comments[id]
		if !ok {
			continue
		}
		author := ""
		if u, ok := m.db.users[c.UserID]; ok {
			author = u.Username
		}
		out = append(out, model.CommentWithAuthor{
			ID:        c.ID,
			Comment:   c.Comment,
			Ratings:   c.Ratings,
			CreatedAt: c.CreatedAt,
			Author:    author,
		})
	}
	return out, nil
}

// ----- media and atomic -----

// fakeMedia hands out sequential keys and records revocations.
type fakeMedia struct {
	allocated int
	revoked   []string
	revokeErr error
}

func (f *fakeMedia) Allocate(ctx context.Context, files []media.File) ([]string, error) {
	keys := make([]string, 0, len(files))
	for range files {
		f.allocated++
		keys = append(keys, fmt.Sprintf("key-%d", f.allocated))
	}
	return keys, nil
}

func (f *fakeMedia) Revoke(ctx context.Context, keys []string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked = append(f.revoked, keys...)
	return nil
}

func (f *fakeMedia) ResolveForRead(ctx context.Context, key string) (string, error) {
	return "https://signed.example/" + key, nil
}

// seqRunner executes steps in order with no transaction semantics, which is
// enough for handlers that only care about ordering and first-error abort.
type seqRunner struct{}

func (seqRunner) RunAtomic(ctx context.Context, steps ...atomic.Step) error {
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ----- request plumbing -----

func testConfig() config.Config {
	return config.Config{
		JWTAccessSecret:  "access-secret",
		JWTRefreshSecret: "refresh-secret",
		AccessTTLMin:     1440,
		RefreshTTLDays:   30,
		BcryptCost:       4,
	}
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
