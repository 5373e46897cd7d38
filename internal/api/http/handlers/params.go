package handlers

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/devsanbid/bravo-test-sub001/internal/repository"
	apperrors "github.com/devsanbid/bravo-test-sub001/pkg/util"
)

func pageParams(c *fiber.Ctx) (int, int) {
	return c.QueryInt("limit", 0), c.QueryInt("offset", 0)
}

func requiredQuery(c *fiber.Ctx, key string) (string, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return "", apperrors.NewValidationError("missing required fields", map[string]any{"fields": []string{key}})
	}
	return value, nil
}

// formFile opens the named multipart file. A missing file yields a nil upload; the caller
// decides whether it is required. The returned close function is always safe to call.
func formFile(c *fiber.Ctx, field string) (*repository.FileUpload, func(), error) {
	noop := func() {}
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, noop, nil
		}
		return nil, noop, apperrors.NewValidationError("invalid multipart payload", nil)
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*repository.FileUpload, func(), error) {
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, apperrors.NewInternalError(err)
	}
	return &repository.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

// optionalForm returns a pointer to a form value when the field was sent.
func optionalForm(c *fiber.Ctx, key string) *string {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}
