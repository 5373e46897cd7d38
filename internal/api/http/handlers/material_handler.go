package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/devsanbid/bravo-test-sub001/internal/api/dto"
	"github.com/devsanbid/bravo-test-sub001/internal/auth"
	"github.com/devsanbid/bravo-test-sub001/internal/service"
)

// MaterialHandler manages study material endpoints.
type MaterialHandler struct {
	service *service.MaterialService
}

// NewMaterialHandler constructs handler.
func NewMaterialHandler(materialService *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{service: materialService}
}

// List GET /api/materials.
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	page, err := h.service.List(c.UserContext(), c.Query("category"), limit, offset)
	if err != nil {
		return err
	}
	limit, offset = effectivePage(limit, offset)
	return c.JSON(dto.NewListResponse(page, limit, offset, dto.NewMaterialResponse))
}

// Upload POST /api/materials/upload.
func (h *MaterialHandler) Upload(c *fiber.Ctx) error {
	file, closeFile, err := formFile(c, "file")
	if err != nil {
		return err
	}
	defer closeFile()

	in := service.MaterialInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
	}
	if claims, ok := auth.ClaimsFromContext(c); ok {
		in.UploadedBy = claims.UserID
	}

	material, err := h.service.Create(c.UserContext(), in, file)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewMaterialResponse(material))
}

// Get GET /api/materials/update?id= and /api/materials/detail?id=.
func (h *MaterialHandler) Get(c *fiber.Ctx) error {
	id, err := requiredQuery(c, "id")
	if err != nil {
		return err
	}
	material, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewMaterialResponse(material))
}

// Update PATCH /api/materials/update?id=. The file is optional.
func (h *MaterialHandler) Update(c *fiber.Ctx) error {
	id, err := requiredQuery(c, "id")
	if err != nil {
		return err
	}
	file, closeFile, err := formFile(c, "file")
	if err != nil {
		return err
	}
	defer closeFile()

	material, err := h.service.Update(c.UserContext(), id, service.MaterialPatch{
		Title:       optionalForm(c, "title"),
		Description: optionalForm(c, "description"),
		Category:    optionalForm(c, "category"),
	}, file)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewMaterialResponse(material))
}

// Delete DELETE /api/materials?id=&fileId=.
func (h *MaterialHandler) Delete(c *fiber.Ctx) error {
	id, err := requiredQuery(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id, c.Query("fileId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
