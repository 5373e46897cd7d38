package handlers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/devsanbid/bravo-test-sub001/internal/api/dto"
	"github.com/devsanbid/bravo-test-sub001/internal/auth"
	"github.com/devsanbid/bravo-test-sub001/internal/events"
	"github.com/devsanbid/bravo-test-sub001/internal/observability"
	"github.com/devsanbid/bravo-test-sub001/internal/service"
	apperrors "github.com/devsanbid/bravo-test-sub001/pkg/util"
)

const (
	eventQueueSize     = 32
	eventRetryMillis   = 3000
	eventKeepaliveTick = 25 * time.Second
)

// GalleryHandler manages gallery endpoints and the realtime change stream.
type GalleryHandler struct {
	service   *service.GalleryService
	metrics   *observability.Metrics
	logger    *zap.Logger
	keepalive time.Duration
}

// NewGalleryHandler constructs handler.
func NewGalleryHandler(galleryService *service.GalleryService, metrics *observability.Metrics, logger *zap.Logger) *GalleryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GalleryHandler{service: galleryService, metrics: metrics, logger: logger, keepalive: eventKeepaliveTick}
}

// List GET /api/gallery.
func (h *GalleryHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	page, err := h.service.List(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	limit, offset = effectivePage(limit, offset)
	return c.JSON(dto.NewListResponse(page, limit, offset, dto.NewGalleryResponse))
}

// Upload POST /api/gallery/upload.
func (h *GalleryHandler) Upload(c *fiber.Ctx) error {
	file, closeFile, err := formFile(c, "file")
	if err != nil {
		return err
	}
	defer closeFile()

	in := service.GalleryInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		UserID:      c.FormValue("userId"),
	}
	if in.UserID == "" {
		if claims, ok := auth.ClaimsFromContext(c); ok {
			in.UserID = claims.UserID
		}
	}

	image, err := h.service.Create(c.UserContext(), in, file)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewGalleryResponse(image))
}

// Get GET /api/gallery/update?id=.
func (h *GalleryHandler) Get(c *fiber.Ctx) error {
	id, err := requiredQuery(c, "id")
	if err != nil {
		return err
	}
	image, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewGalleryResponse(image))
}

// Update PUT /api/gallery/update?id=. The image file is optional.
func (h *GalleryHandler) Update(c *fiber.Ctx) error {
	id, err := requiredQuery(c, "id")
	if err != nil {
		return err
	}
	file, closeFile, err := formFile(c, "file")
	if err != nil {
		return err
	}
	defer closeFile()

	image, err := h.service.Update(c.UserContext(), id, service.GalleryPatch{
		Title:       optionalForm(c, "title"),
		Description: optionalForm(c, "description"),
	}, file)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewGalleryResponse(image))
}

// Delete DELETE /api/gallery?id=.
func (h *GalleryHandler) Delete(c *fiber.Ctx) error {
	id, err := requiredQuery(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// Events GET /api/gallery/events streams gallery changes as server-sent events until the
// client goes away.
func (h *GalleryHandler) Events(c *fiber.Ctx) error {
	queue := make(chan events.Event, eventQueueSize)
	stop := make(chan struct{})

	handler := events.DedupeCreates(func(ev events.Event) {
		select {
		case queue <- ev:
		case <-stop:
		}
	})
	// The request context ends when this handler returns, before the stream is written.
	unsubscribe, err := h.service.Subscribe(context.Background(), handler)
	if err != nil {
		return err
	}
	h.metrics.SubscriberOpened()

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			close(stop)
			unsubscribe()
			h.metrics.SubscriberClosed()
		}()

		fmt.Fprintf(w, "retry: %d\n\n", eventRetryMillis)
		if err := w.Flush(); err != nil {
			return
		}

		ticker := time.NewTicker(h.keepalive)
		defer ticker.Stop()
		for {
			select {
			case ev := <-queue:
				if err := writeEvent(w, ev); err != nil {
					h.logger.Warn("gallery event not encoded", zap.String("event_id", ev.ID), zap.Error(err))
					continue
				}
			case <-ticker.C:
				if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
					return
				}
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}

// writeEvent encodes one event as an SSE frame named after its kind.
func writeEvent(w io.Writer, ev events.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Kind, payload)
	return err
}
