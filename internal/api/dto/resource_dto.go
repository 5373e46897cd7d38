package dto

import (
	"time"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
	"github.com/devsanbid/bravo-test-sub001/internal/repository"
)

// ListResponse is one page of a listing.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewListResponse converts a repository page.
func NewListResponse[S, T any](page *repository.Page[S], limit, offset int, convert func(*S) T) ListResponse[T] {
	items := make([]T, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, convert(&page.Items[i]))
	}
	return ListResponse[T]{Items: items, Total: page.Total, Limit: limit, Offset: offset}
}

// BlogRequest is the create and update payload of a post. Pointers distinguish absent
// fields on update.
type BlogRequest struct {
	Title     *string   `json:"title"`
	Slug      *string   `json:"slug"`
	Excerpt   *string   `json:"excerpt"`
	Content   *string   `json:"content"`
	Author    *string   `json:"author"`
	CoverURL  *string   `json:"coverUrl"`
	Tags      *[]string `json:"tags"`
	Published *bool     `json:"published"`
}

// BlogResponse is a post.
type BlogResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CoverURL  string    `json:"coverUrl,omitempty"`
	Tags      []string  `json:"tags"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewBlogResponse maps a post.
func NewBlogResponse(p *domain.BlogPost) BlogResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return BlogResponse{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Excerpt:   p.Excerpt,
		Content:   p.Content,
		Author:    p.Author,
		CoverURL:  p.CoverURL,
		Tags:      tags,
		Published: p.Published,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// GalleryResponse is a gallery image.
type GalleryResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      string    `json:"userId"`
	ImageID     string    `json:"imageId"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewGalleryResponse maps an image.
func NewGalleryResponse(img *domain.GalleryImage) GalleryResponse {
	return GalleryResponse{
		ID:          img.ID,
		Title:       img.Title,
		Description: img.Description,
		UserID:      img.UserID,
		ImageID:     img.ImageID,
		ImageURL:    img.ImageURL,
		CreatedAt:   img.CreatedAt,
		UpdatedAt:   img.UpdatedAt,
	}
}

// MaterialResponse is a study material.
type MaterialResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	FileID      string    `json:"fileId"`
	FileURL     string    `json:"fileUrl"`
	FileName    string    `json:"fileName"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewMaterialResponse maps a material.
func NewMaterialResponse(m *domain.StudyMaterial) MaterialResponse {
	return MaterialResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Category:    m.Category,
		FileID:      m.FileID,
		FileURL:     m.FileURL,
		FileName:    m.FileName,
		UploadedBy:  m.UploadedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
