package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

// GalleryRepository persists gallery image documents.
type GalleryRepository interface {
	Create(ctx context.Context, image *domain.GalleryImage) error
	Get(ctx context.Context, id string) (*domain.GalleryImage, error)
	List(ctx context.Context, limit, offset int) (*Page[domain.GalleryImage], error)
	Update(ctx context.Context, id string, patch map[string]any) (*domain.GalleryImage, error)
	Delete(ctx context.Context, id string) error
}

type galleryRepository struct {
	store      DocumentStore
	collection string
}

// NewGalleryRepository binds images to the gallery collection.
func NewGalleryRepository(store DocumentStore, collection string) GalleryRepository {
	return &galleryRepository{store: store, collection: collection}
}

func (r *galleryRepository) Create(ctx context.Context, image *domain.GalleryImage) error {
	image.ID = uuid.NewString()
	doc, err := r.store.Create(ctx, r.collection, image.ID, map[string]any{
		"title":       image.Title,
		"description": image.Description,
		"userId":      image.UserID,
		"imageId":     image.ImageID,
		"imageUrl":    image.ImageURL,
	})
	if err != nil {
		return err
	}
	image.CreatedAt = doc.CreatedAt
	image.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *galleryRepository) Get(ctx context.Context, id string) (*domain.GalleryImage, error) {
	doc, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		return nil, err
	}
	return toGalleryImage(doc), nil
}

func (r *galleryRepository) List(ctx context.Context, limit, offset int) (*Page[domain.GalleryImage], error) {
	list, err := r.store.List(ctx, r.collection, DocumentQuery{Limit: limit, Offset: offset, NewestFirst: true})
	if err != nil {
		return nil, err
	}
	return mapPage(list, func(doc *Document) domain.GalleryImage { return *toGalleryImage(doc) }), nil
}

func (r *galleryRepository) Update(ctx context.Context, id string, patch map[string]any) (*domain.GalleryImage, error) {
	doc, err := r.store.Update(ctx, r.collection, id, patch)
	if err != nil {
		return nil, err
	}
	return toGalleryImage(doc), nil
}

func (r *galleryRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.collection, id)
}

func toGalleryImage(doc *Document) *domain.GalleryImage {
	return &domain.GalleryImage{
		ID:          doc.ID,
		Title:       stringField(doc.Data, "title"),
		Description: stringField(doc.Data, "description"),
		UserID:      stringField(doc.Data, "userId"),
		ImageID:     stringField(doc.Data, "imageId"),
		ImageURL:    stringField(doc.Data, "imageUrl"),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
