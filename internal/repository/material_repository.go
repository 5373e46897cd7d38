package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

// MaterialRepository persists study material documents.
type MaterialRepository interface {
	Create(ctx context.Context, material *domain.StudyMaterial) error
	Get(ctx context.Context, id string) (*domain.StudyMaterial, error)
	List(ctx context.Context, category string, limit, offset int) (*Page[domain.StudyMaterial], error)
	Update(ctx context.Context, id string, patch map[string]any) (*domain.StudyMaterial, error)
	Delete(ctx context.Context, id string) error
}

type materialRepository struct {
	store      DocumentStore
	collection string
}

// NewMaterialRepository binds materials to the materials collection.
func NewMaterialRepository(store DocumentStore, collection string) MaterialRepository {
	return &materialRepository{store: store, collection: collection}
}

func (r *materialRepository) Create(ctx context.Context, material *domain.StudyMaterial) error {
	material.ID = uuid.NewString()
	doc, err := r.store.Create(ctx, r.collection, material.ID, map[string]any{
		"title":       material.Title,
		"description": material.Description,
		"category":    material.Category,
		"fileId":      material.FileID,
		"fileUrl":     material.FileURL,
		"fileName":    material.FileName,
		"uploadedBy":  material.UploadedBy,
	})
	if err != nil {
		return err
	}
	material.CreatedAt = doc.CreatedAt
	material.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *materialRepository) Get(ctx context.Context, id string) (*domain.StudyMaterial, error) {
	doc, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		return nil, err
	}
	return toStudyMaterial(doc), nil
}

// List returns materials newest-first; a non-empty category restricts to exact matches.
func (r *materialRepository) List(ctx context.Context, category string, limit, offset int) (*Page[domain.StudyMaterial], error) {
	query := DocumentQuery{Limit: limit, Offset: offset, NewestFirst: true}
	if category != "" {
		query.Filters = []Equal{{Field: "category", Value: category}}
	}
	list, err := r.store.List(ctx, r.collection, query)
	if err != nil {
		return nil, err
	}
	return mapPage(list, func(doc *Document) domain.StudyMaterial { return *toStudyMaterial(doc) }), nil
}

func (r *materialRepository) Update(ctx context.Context, id string, patch map[string]any) (*domain.StudyMaterial, error) {
	doc, err := r.store.Update(ctx, r.collection, id, patch)
	if err != nil {
		return nil, err
	}
	return toStudyMaterial(doc), nil
}

func (r *materialRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.collection, id)
}

func toStudyMaterial(doc *Document) *domain.StudyMaterial {
	return &domain.StudyMaterial{
		ID:          doc.ID,
		Title:       stringField(doc.Data, "title"),
		Description: stringField(doc.Data, "description"),
		Category:    stringField(doc.Data, "category"),
		FileID:      stringField(doc.Data, "fileId"),
		FileURL:     stringField(doc.Data, "fileUrl"),
		FileName:    stringField(doc.Data, "fileName"),
		UploadedBy:  stringField(doc.Data, "uploadedBy"),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
