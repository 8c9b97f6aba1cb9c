package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/audioshop/audioshop-api/internal/apperr"
	"github.com/audioshop/audioshop-api/internal/atomic"
	"github.com/audioshop/audioshop-api/internal/config"
	"github.com/audioshop/audioshop-api/internal/media"
	"github.com/audioshop/audioshop-api/internal/middleware"
	"github.com/audioshop/audioshop-api/internal/model"
	"github.com/audioshop/audioshop-api/internal/repository"
)

// ProductHandler bundles dependencies for catalog endpoints. Multi-entity
// writes go through the atomic runner; media changes happen outside of it,
// ordered so a failed media operation prevents the store mutation entirely.
type ProductHandler struct {
	Cfg      config.Config
	Products ProductStore
	Comments CommentStore
	Users    UserStore
	Media    MediaService
	Atomic   atomic.Runner
}

func NewProductHandler(cfg config.Config, products ProductStore, comments CommentStore, users UserStore, m MediaService, runner atomic.Runner) *ProductHandler {
	return &ProductHandler{Cfg: cfg, Products: products, Comments: comments, Users: users, Media: m, Atomic: runner}
}

type productCreateReq struct {
	Name        string  `form:"name" validate:"required"`
	Category    string  `form:"category" validate:"required,oneof=earphones headphones speakers"`
	Description string  `form:"description" validate:"required"`
	Price       float64 `form:"price" validate:"required,gt=0"`
	Features    string  `form:"features" validate:"max=1000"`
}

// productDetail is the full read model: the stored product with signed image
// URLs, the derived recently-added flag and the resolved comments.
type productDetail struct {
	model.Product
	IsNew    bool                      `json:"isNew"`
	Comments []model.CommentWithAuthor `json:"comments"`
}

// GetProducts lists summary projections, optionally restricted to a
// favorites filter passed as a JSON array of ids in the query string.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	var ids []bson.ObjectID
	if favorites := c.QueryParam("favorites"); favorites != "" {
		var raw []string
		if err := json.Unmarshal([]byte(favorites), &raw); err != nil {
			return apperr.BadRequest("favorites must be a JSON array of ids")
		}
		ids = make([]bson.ObjectID, 0, len(raw))
		for _, hex := range raw {
			id, err := bson.ObjectIDFromHex(hex)
			if err != nil {
				return apperr.BadRequest("Cast to ObjectId failed for value " + hex)
			}
			ids = append(ids, id)
		}
	}

	ctx := c.Request().Context()
	summaries, err := h.Products.List(ctx, ids)
	if err != nil {
		return err
	}
	if err := h.signSummaries(c, summaries); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": summaries})
}

// GetProductsByCategory filters server-side; recently added products sort
// first.
func (h *ProductHandler) GetProductsByCategory(c echo.Context) error {
	slug := c.Param("slug")
	if !model.ValidCategory(slug) {
		return apperr.BadRequest("Category has failed for value '" + slug + "'")
	}
	summaries, err := h.Products.ListByCategory(c.Request().Context(), slug)
	if err != nil {
		return err
	}
	if err := h.signSummaries(c, summaries); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": summaries})
}

// GetProduct returns the full product with resolved comments. Image
// references are exchanged for temporary signed URLs on every read.
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseObjectID(c.Param("productId"))
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	product, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Product not found")
		}
		return err
	}

	comments, err := h.Comments.ListWithAuthors(ctx, product.CommentIDs)
	if err != nil {
		return err
	}

	if product.Image, err = h.Media.ResolveForRead(ctx, product.Image); err != nil {
		return err
	}
	for i, key := range product.Gallery {
		if product.Gallery[i], err = h.Media.ResolveForRead(ctx, key); err != nil {
			return err
		}
	}

	detail := productDetail{
		Product:  product,
		IsNew:    product.RecentlyAdded(nowUTC()),
		Comments: comments,
	}
	return c.JSON(http.StatusOK, echo.Map{"data": detail})
}

// CreateProduct stores the uploaded images, then creates the product and
// links it to the creating admin in one atomic unit.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	user, ok := middleware.Identity(c)
	if !ok {
		return apperr.Unauthenticated("Authentication required")
	}

	var req productCreateReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	imageFiles, galleryFiles, err := productImages(c, true)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	files, closeFiles, err := openUploads(append(imageFiles, galleryFiles...))
	if err != nil {
		return err
	}
	defer closeFiles()

	keys, err := h.Media.Allocate(ctx, files)
	if err != nil {
		return err
	}

	product := model.Product{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		Features:    req.Features,
		Image:       keys[0],
		Gallery:     keys[1:],
	}
	err = h.Atomic.RunAtomic(ctx,
		func(ctx context.Context) error { return h.Products.Create(ctx, &product) },
		func(ctx context.Context) error { return h.Users.PushProductID(ctx, user.ID, product.ID) },
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": product})
}

// UpdateProduct patches fields in place. A replaced image or gallery first
// revokes exactly the superseded references; the untouched set is preserved.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := parseObjectID(c.Param("productId"))
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	product, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Product not found")
		}
		return err
	}

	upd, err := h.buildUpdate(c)
	if err != nil {
		return err
	}

	imageFiles, galleryFiles, err := productImages(c, false)
	if err != nil {
		return err
	}

	// Revoke only what the upload replaces before any allocation or store
	// write happens.
	switch {
	case len(imageFiles) > 0 && len(galleryFiles) > 0:
		err = h.Media.Revoke(ctx, product.ImageKeys())
	case len(imageFiles) > 0:
		err = h.Media.Revoke(ctx, []string{product.Image})
	case len(galleryFiles) > 0:
		err = h.Media.Revoke(ctx, product.Gallery)
	}
	if err != nil {
		return err
	}

	if len(imageFiles) > 0 {
		files, closeFiles, err := openUploads(imageFiles[:1])
		if err != nil {
			return err
		}
		keys, err := h.Media.Allocate(ctx, files)
		closeFiles()
		if err != nil {
			return err
		}
		upd.Image = &keys[0]
	}
	if len(galleryFiles) > 0 {
		files, closeFiles, err := openUploads(galleryFiles)
		if err != nil {
			return err
		}
		keys, err := h.Media.Allocate(ctx, files)
		closeFiles()
		if err != nil {
			return err
		}
		upd.Gallery = keys
	}

	updated, err := h.Products.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Product not found")
		}
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": updated})
}

// DeleteProduct removes the product, its comments and every back-reference
// in one atomic unit. Media deletion runs first and outside the transaction:
// the media backend cannot join the store's transaction protocol, so a
// failed revoke must abort before any store mutation begins.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	user, ok := middleware.Identity(c)
	if !ok {
		return apperr.Unauthenticated("Authentication required")
	}
	id, err := parseObjectID(c.Param("productId"))
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	product, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Product not found")
		}
		return err
	}

	if err := h.Media.Revoke(ctx, product.ImageKeys()); err != nil {
		return err
	}

	err = h.Atomic.RunAtomic(ctx,
		func(ctx context.Context) error { return h.Products.Delete(ctx, id) },
		func(ctx context.Context) error { return h.Comments.DeleteManyByIDs(ctx, product.CommentIDs) },
		func(ctx context.Context) error { return h.Users.PullCommentIDsFromAll(ctx, product.CommentIDs) },
		func(ctx context.Context) error { return h.Users.PullProductID(ctx, user.ID, id) },
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": "Product deleted"})
}

// buildUpdate reads the optional form fields of a PATCH into a partial
// update, validating the ones that are present.
func (h *ProductHandler) buildUpdate(c echo.Context) (ProductUpdate, error) {
	var upd ProductUpdate
	if v := c.FormValue("name"); v != "" {
		upd.Name = &v
	}
	if v := c.FormValue("category"); v != "" {
		if !model.ValidCategory(v) {
			return upd, apperr.BadRequest("Category has failed for value '" + v + "'")
		}
		upd.Category = &v
	}
	if v := c.FormValue("description"); v != "" {
		upd.Description = &v
	}
	if v := c.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price <= 0 {
			return upd, apperr.BadRequest("Cast to Number failed for value " + v)
		}
		upd.Price = &price
	}
	if v := c.FormValue("features"); v != "" {
		if len(v) > model.MaxFeaturesLen {
			return upd, apperr.BadRequest("Features can be max. 1000 characters")
		}
		upd.Features = &v
	}
	return upd, nil
}

// signSummaries swaps stored image keys for temporary signed URLs in place.
func (h *ProductHandler) signSummaries(c echo.Context, summaries []model.ProductSummary) error {
	ctx := c.Request().Context()
	for i := range summaries {
		url, err := h.Media.ResolveForRead(ctx, summaries[i].Image)
		if err != nil {
			return err
		}
		summaries[i].Image = url
	}
	return nil
}

// productImages extracts the image and gallery uploads from the multipart
// form. When required is true a missing primary image is an error; the
// gallery is always capped at MaxGalleryImages.
func productImages(c echo.Context, required bool) (image, gallery []*multipart.FileHeader, err error) {
	form, ferr := c.MultipartForm()
	if ferr != nil || form == nil {
		if required {
			return nil, nil, apperr.BadRequest("Image must be provided")
		}
		return nil, nil, nil
	}
	image = form.File["image"]
	gallery = form.File["gallery"]
	if required && len(image) == 0 {
		return nil, nil, apperr.BadRequest("Image must be provided")
	}
	if len(image) > 1 {
		image = image[:1]
	}
	if len(gallery) > model.MaxGalleryImages {
		return nil, nil, apperr.BadRequest("Gallery can contain max. 3 images")
	}
	return image, gallery, nil
}

// openUploads opens every file header into a media.File and returns a
// closer releasing all of them.
func openUploads(headers []*multipart.FileHeader) ([]media.File, func(), error) {
	files := make([]media.File, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		opened = append(opened, f)
		files = append(files, media.File{Body: f, ContentType: fh.Header.Get("Content-Type")})
	}
	return files, closeAll, nil
}
