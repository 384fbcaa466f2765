// product.go - Defines the catalog models

package models

import "time"

// Link kinds accepted for ExternalLink.Type.
const (
	LinkPreview       = "preview"
	LinkDemo          = "demo"
	LinkDocumentation = "documentation"
	LinkOther         = "other"
)

type DownloadableFile struct {
	Name string `json:"name" bson:"name" validate:"required"`
	URL  string `json:"url" bson:"url" validate:"required"`
	Size int64  `json:"size" bson:"size"`
	Type string `json:"type" bson:"type"`
}

type ExternalLink struct {
	Name string `json:"name" bson:"name" validate:"required"`
	URL  string `json:"url" bson:"url" validate:"required,httpurl"`
	Type string `json:"type" bson:"type" validate:"oneof=preview demo documentation other"`
}

// Secret is persisted with Value encrypted. Outside the service layer Value
// is either plaintext (access granted) or empty (redacted).
type Secret struct {
	Name        string `json:"name" bson:"name" validate:"required"`
	Value       string `json:"value,omitempty" bson:"value" validate:"required"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

type Product struct {
	ID                string             `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Title             string             `json:"title" gorm:"not null" bson:"title"`
	Slug              string             `json:"slug" gorm:"uniqueIndex;not null" bson:"slug"`
	Category          string             `json:"category" gorm:"index" bson:"category"`
	Tags              []string           `json:"tags" gorm:"serializer:json;type:text" bson:"tags"`
	ShortDescription  string             `json:"shortDescription" gorm:"type:text" bson:"shortDescription"`
	FullDescription   string             `json:"fullDescription" gorm:"type:text" bson:"fullDescription"`
	CoverImage        string             `json:"coverImage" bson:"coverImage"`
	GalleryImages     []string           `json:"galleryImages" gorm:"serializer:json;type:text" bson:"galleryImages"`
	DownloadableFiles []DownloadableFile `json:"downloadableFiles" gorm:"serializer:json;type:text" bson:"downloadableFiles"`
	ExternalLinks     []ExternalLink     `json:"externalLinks" gorm:"serializer:json;type:text" bson:"externalLinks"`
	Secrets           []Secret           `json:"secrets" gorm:"serializer:json;type:text" bson:"secrets"`
	IsPaid            bool               `json:"isPaid" gorm:"index" bson:"isPaid"`
	Version           string             `json:"version" bson:"version"`
	Changelog         string             `json:"changelog" gorm:"type:text" bson:"changelog"`
	CreatedAt         time.Time          `json:"createdAt" gorm:"index" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
	CreatedBy         string             `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	UpdatedBy         string             `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// Clone returns a copy whose slices can be modified without touching p.
// Nil slices stay nil and empty slices stay empty, so the copy encodes to
// the same JSON as p.
func (p *Product) Clone() *Product {
	c := *p
	c.Tags = cloneSlice(p.Tags)
	c.GalleryImages = cloneSlice(p.GalleryImages)
	c.DownloadableFiles = cloneSlice(p.DownloadableFiles)
	c.ExternalLinks = cloneSlice(p.ExternalLinks)
	c.Secrets = cloneSlice(p.Secrets)
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
