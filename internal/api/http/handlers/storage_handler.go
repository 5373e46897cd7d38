package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/devsanbid/bravo-test-sub001/internal/repository"
	apperrors "github.com/devsanbid/bravo-test-sub001/pkg/util"
)

// StorageHandler streams stored files.
type StorageHandler struct {
	files  repository.FileStore
	bucket string
}

// NewStorageHandler constructs handler for the configured bucket.
func NewStorageHandler(files repository.FileStore, bucket string) *StorageHandler {
	return &StorageHandler{files: files, bucket: bucket}
}

// View GET /api/storage/:bucket/files/:id/view.
func (h *StorageHandler) View(c *fiber.Ctx) error {
	id := c.Params("id")
	if c.Params("bucket") != h.bucket {
		return apperrors.NewNotFound("file", map[string]any{"id": id})
	}

	file, body, err := h.files.Open(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return apperrors.NewNotFound("file", map[string]any{"id": id})
		}
		return apperrors.NewBackendError("open file", err)
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, contentType)
	if file.Name != "" {
		c.Set(fiber.HeaderContentDisposition, "inline; filename="+strconv.Quote(file.Name))
	}
	c.Set(fiber.HeaderCacheControl, "private, max-age=300")

	size := -1
	if file.SizeBytes > 0 {
		size = int(file.SizeBytes)
	}
	// fasthttp closes the body once it has been written.
	return c.SendStream(body, size)
}
