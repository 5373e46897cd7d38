package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

// BlogRepository persists blog posts.
type BlogRepository interface {
	Create(ctx context.Context, post *domain.BlogPost) error
	Get(ctx context.Context, id string) (*domain.BlogPost, error)
	List(ctx context.Context, publishedOnly bool, limit, offset int) (*Page[domain.BlogPost], error)
	Update(ctx context.Context, id string, patch map[string]any) (*domain.BlogPost, error)
	Delete(ctx context.Context, id string) error
}

type blogRepository struct {
	store      DocumentStore
	collection string
}

// NewBlogRepository binds posts to the blogs collection.
func NewBlogRepository(store DocumentStore, collection string) BlogRepository {
	return &blogRepository{store: store, collection: collection}
}

func (r *blogRepository) Create(ctx context.Context, post *domain.BlogPost) error {
	post.ID = uuid.NewString()
	if post.Tags == nil {
		post.Tags = []string{}
	}
	doc, err := r.store.Create(ctx, r.collection, post.ID, map[string]any{
		"title":     post.Title,
		"slug":      post.Slug,
		"excerpt":   post.Excerpt,
		"content":   post.Content,
		"author":    post.Author,
		"coverUrl":  post.CoverURL,
		"tags":      post.Tags,
		"published": post.Published,
	})
	if err != nil {
		return err
	}
	post.CreatedAt = doc.CreatedAt
	post.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *blogRepository) Get(ctx context.Context, id string) (*domain.BlogPost, error) {
	doc, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		return nil, err
	}
	return toBlogPost(doc), nil
}

func (r *blogRepository) List(ctx context.Context, publishedOnly bool, limit, offset int) (*Page[domain.BlogPost], error) {
	query := DocumentQuery{Limit: limit, Offset: offset, NewestFirst: true}
	if publishedOnly {
		query.Filters = []Equal{{Field: "published", Value: true}}
	}
	list, err := r.store.List(ctx, r.collection, query)
	if err != nil {
		return nil, err
	}
	return mapPage(list, func(doc *Document) domain.BlogPost { return *toBlogPost(doc) }), nil
}

func (r *blogRepository) Update(ctx context.Context, id string, patch map[string]any) (*domain.BlogPost, error) {
	doc, err := r.store.Update(ctx, r.collection, id, patch)
	if err != nil {
		return nil, err
	}
	return toBlogPost(doc), nil
}

func (r *blogRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.collection, id)
}

func toBlogPost(doc *Document) *domain.BlogPost {
	return &domain.BlogPost{
		ID:        doc.ID,
		Title:     stringField(doc.Data, "title"),
		Slug:      stringField(doc.Data, "slug"),
		Excerpt:   stringField(doc.Data, "excerpt"),
		Content:   stringField(doc.Data, "content"),
		Author:    stringField(doc.Data, "author"),
		CoverURL:  stringField(doc.Data, "coverUrl"),
		Tags:      stringSliceField(doc.Data, "tags"),
		Published: boolField(doc.Data, "published"),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
