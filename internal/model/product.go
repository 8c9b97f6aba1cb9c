package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product categories form a closed enumeration; anything else is rejected at
// validation time.
const (
	CategoryEarphones  = "earphones"
	CategoryHeadphones = "headphones"
	CategorySpeakers   = "speakers"
)

// ValidCategory reports whether slug names a known product category.
func ValidCategory(slug string) bool {
	switch slug {
	case CategoryEarphones, CategoryHeadphones, CategorySpeakers:
		return true
	}
	return false
}

// recentWindow is how long a product counts as recently added.
const recentWindow = 7 * 24 * time.Hour

// Product represents a catalog item in the `products` collection. Image and
// Gallery hold opaque object-storage keys; presigned URLs are substituted at
// read time and never persisted. MaxGalleryImages bounds the gallery upload.
type Product struct {
	ID          bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string          `bson:"name" json:"name"`
	Category    string          `bson:"category" json:"category"`
	Description string          `bson:"description" json:"description"`
	Price       float64         `bson:"price" json:"price"`
	Image       string          `bson:"image" json:"image"`
	Gallery     []string        `bson:"gallery" json:"gallery"`
	Features    string          `bson:"features" json:"features"`
	CommentIDs  []bson.ObjectID `bson:"comments" json:"comments"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt,omitempty" json:"updatedAt,omitzero"`
}

// MaxGalleryImages caps how many gallery images a product may carry.
const MaxGalleryImages = 3

// MaxFeaturesLen caps the free-text features blob.
const MaxFeaturesLen = 1000

// RecentlyAdded reports whether the product was created within the last
// week relative to now. The flag is derived on every read, never stored.
func (p Product) RecentlyAdded(now time.Time) bool {
	return now.Sub(p.CreatedAt) < recentWindow
}

// ImageKeys returns the primary image key followed by the gallery keys, the
// full set of stored objects that belong to the product.
func (p Product) ImageKeys() []string {
	keys := make([]string, 0, 1+len(p.Gallery))
	keys = append(keys, p.Image)
	return append(keys, p.Gallery...)
}

// ProductSummary is the minimal projection returned by list endpoints. Full
// product documents are never returned in list form.
type ProductSummary struct {
	ID        bson.ObjectID `bson:"_id" json:"id"`
	Name      string        `bson:"name" json:"name"`
	Category  string        `bson:"category" json:"category"`
	Image     string        `bson:"image" json:"image"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	IsNew     bool          `bson:"isNew" json:"isNew"`
}
