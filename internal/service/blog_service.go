package service

import (
	"context"
	"strings"
	"unicode"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
	"github.com/devsanbid/bravo-test-sub001/internal/repository"
	apperrors "github.com/devsanbid/bravo-test-sub001/pkg/util"
)

// BlogInput describes a new post.
type BlogInput struct {
	Title     string
	Slug      string
	Excerpt   string
	Content   string
	Author    string
	CoverURL  string
	Tags      []string
	Published bool
}

// BlogPatch carries the fields to change; nil fields are left alone.
type BlogPatch struct {
	Title     *string
	Slug      *string
	Excerpt   *string
	Content   *string
	Author    *string
	CoverURL  *string
	Tags      *[]string
	Published *bool
}

// BlogService manages blog posts.
type BlogService struct {
	posts repository.BlogRepository
}

// NewBlogService constructs the service.
func NewBlogService(posts repository.BlogRepository) *BlogService {
	return &BlogService{posts: posts}
}

func (s *BlogService) Create(ctx context.Context, in BlogInput) (*domain.BlogPost, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := missingFields(map[string]string{"title": in.Title, "content": strings.TrimSpace(in.Content)}); err != nil {
		return nil, err
	}
	slug := slugify(in.Slug)
	if slug == "" {
		slug = slugify(in.Title)
	}

	post := &domain.BlogPost{
		Title:     in.Title,
		Slug:      slug,
		Excerpt:   in.Excerpt,
		Content:   in.Content,
		Author:    in.Author,
		CoverURL:  in.CoverURL,
		Tags:      in.Tags,
		Published: in.Published,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, backendError("create blog post", err)
	}
	return post, nil
}

// List returns posts newest-first; only published posts unless privileged.
func (s *BlogService) List(ctx context.Context, privileged bool, limit, offset int) (*repository.Page[domain.BlogPost], error) {
	limit, offset = normalizePage(limit, offset)
	page, err := s.posts.List(ctx, !privileged, limit, offset)
	if err != nil {
		return nil, backendError("list blog posts", err)
	}
	return page, nil
}

// GetByID hides unpublished posts from non-privileged callers.
func (s *BlogService) GetByID(ctx context.Context, id string, privileged bool) (*domain.BlogPost, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, lookupError("get blog post", "blog post", id, err)
	}
	if !post.Published && !privileged {
		return nil, apperrors.NewNotFound("blog post", map[string]any{"id": id})
	}
	return post, nil
}

func (s *BlogService) Update(ctx context.Context, id string, patch BlogPatch) (*domain.BlogPost, error) {
	fields := map[string]any{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title cannot be empty", map[string]any{"field": "title"})
		}
		fields["title"] = title
	}
	if patch.Slug != nil {
		fields["slug"] = slugify(*patch.Slug)
	}
	if patch.Excerpt != nil {
		fields["excerpt"] = *patch.Excerpt
	}
	if patch.Content != nil {
		fields["content"] = *patch.Content
	}
	if patch.Author != nil {
		fields["author"] = *patch.Author
	}
	if patch.CoverURL != nil {
		fields["coverUrl"] = *patch.CoverURL
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		fields["tags"] = tags
	}
	if patch.Published != nil {
		fields["published"] = *patch.Published
	}
	if len(fields) == 0 {
		return nil, apperrors.NewValidationError("nothing to update", nil)
	}

	post, err := s.posts.Update(ctx, id, fields)
	if err != nil {
		return nil, lookupError("update blog post", "blog post", id, err)
	}
	return post, nil
}

func (s *BlogService) Delete(ctx context.Context, id string) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return lookupError("delete blog post", "blog post", id, err)
	}
	return nil
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
