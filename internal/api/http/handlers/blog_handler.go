package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/devsanbid/bravo-test-sub001/internal/api/dto"
	"github.com/devsanbid/bravo-test-sub001/internal/auth"
	"github.com/devsanbid/bravo-test-sub001/internal/domain"
	"github.com/devsanbid/bravo-test-sub001/internal/service"
	apperrors "github.com/devsanbid/bravo-test-sub001/pkg/util"
)

// BlogHandler manages blog endpoints.
type BlogHandler struct {
	service *service.BlogService
}

// NewBlogHandler constructs handler.
func NewBlogHandler(blogService *service.BlogService) *BlogHandler {
	return &BlogHandler{service: blogService}
}

// List GET /api/blogs.
func (h *BlogHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	page, err := h.service.List(c.UserContext(), auth.IsPrivileged(c), limit, offset)
	if err != nil {
		return err
	}
	limit, offset = effectivePage(limit, offset)
	return c.JSON(dto.NewListResponse(page, limit, offset, dto.NewBlogResponse))
}

// Get GET /api/blogs/:id.
func (h *BlogHandler) Get(c *fiber.Ctx) error {
	post, err := h.service.GetByID(c.UserContext(), c.Params("id"), auth.IsPrivileged(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBlogResponse(post))
}

// Create POST /api/blogs.
func (h *BlogHandler) Create(c *fiber.Ctx) error {
	var req dto.BlogRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	in := service.BlogInput{
		Title:     deref(req.Title),
		Slug:      deref(req.Slug),
		Excerpt:   deref(req.Excerpt),
		Content:   deref(req.Content),
		Author:    deref(req.Author),
		CoverURL:  deref(req.CoverURL),
		Published: req.Published != nil && *req.Published,
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
	}
	if in.Author == "" {
		if claims, ok := auth.ClaimsFromContext(c); ok {
			in.Author = displayName(claims.SessionUser)
		}
	}

	post, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewBlogResponse(post))
}

// Update PUT /api/blogs/:id.
func (h *BlogHandler) Update(c *fiber.Ctx) error {
	var req dto.BlogRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	post, err := h.service.Update(c.UserContext(), c.Params("id"), service.BlogPatch{
		Title:     req.Title,
		Slug:      req.Slug,
		Excerpt:   req.Excerpt,
		Content:   req.Content,
		Author:    req.Author,
		CoverURL:  req.CoverURL,
		Tags:      req.Tags,
		Published: req.Published,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBlogResponse(post))
}

// Delete DELETE /api/blogs/:id.
func (h *BlogHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func displayName(u domain.SessionUser) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}

// effectivePage mirrors the listing defaults for the response envelope.
func effectivePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = service.DefaultPageLimit
	}
	if limit > service.MaxPageLimit {
		limit = service.MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
