package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
	"github.com/devsanbid/bravo-test-sub001/internal/events"
	"github.com/devsanbid/bravo-test-sub001/internal/repository"
	apperrors "github.com/devsanbid/bravo-test-sub001/pkg/util"
)

// GalleryInput describes a new gallery image.
type GalleryInput struct {
	Title       string
	Description string
	UserID      string
}

// GalleryPatch carries the fields to change; nil fields are left alone.
type GalleryPatch struct {
	Title       *string
	Description *string
}

// GalleryService manages gallery images and their files, and publishes change events.
type GalleryService struct {
	images     repository.GalleryRepository
	files      repository.FileStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// GalleryDependencies bundles collaborators of the gallery service.
type GalleryDependencies struct {
	GalleryRepo repository.GalleryRepository
	Files       repository.FileStore
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewGalleryService constructs the service.
func NewGalleryService(deps GalleryDependencies) *GalleryService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GalleryService{images: deps.GalleryRepo, files: deps.Files, dispatcher: deps.Dispatcher, logger: logger}
}

// Create uploads the file and then writes the document. A failed document write deletes
// the uploaded file again.
func (s *GalleryService) Create(ctx context.Context, in GalleryInput, file *repository.FileUpload) (*domain.GalleryImage, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.UserID = strings.TrimSpace(in.UserID)
	if err := missingFields(map[string]string{"title": in.Title, "description": in.Description, "userId": in.UserID}); err != nil {
		return nil, err
	}
	if file == nil || file.Body == nil {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": []string{"file"}})
	}

	stored, err := s.files.Put(ctx, *file)
	if err != nil {
		return nil, uploadError("upload gallery image", err)
	}

	image := &domain.GalleryImage{
		Title:       in.Title,
		Description: in.Description,
		UserID:      in.UserID,
		ImageID:     stored.ID,
		ImageURL:    s.files.ViewURL(stored.ID),
	}
	if err := s.images.Create(ctx, image); err != nil {
		s.discardFile(ctx, stored.ID)
		return nil, backendError("create gallery image", err)
	}

	s.publish(ctx, events.KindCreate, image.ID, image)
	return image, nil
}

// List returns images newest-first.
func (s *GalleryService) List(ctx context.Context, limit, offset int) (*repository.Page[domain.GalleryImage], error) {
	limit, offset = normalizePage(limit, offset)
	page, err := s.images.List(ctx, limit, offset)
	if err != nil {
		return nil, backendError("list gallery images", err)
	}
	return page, nil
}

func (s *GalleryService) GetByID(ctx context.Context, id string) (*domain.GalleryImage, error) {
	image, err := s.images.Get(ctx, id)
	if err != nil {
		return nil, lookupError("get gallery image", "gallery image", id, err)
	}
	return image, nil
}

// Update changes metadata and optionally replaces the file: the new file is uploaded,
// the document repointed, then the old file removed.
func (s *GalleryService) Update(ctx context.Context, id string, patch GalleryPatch, file *repository.FileUpload) (*domain.GalleryImage, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title cannot be empty", map[string]any{"field": "title"})
		}
		fields["title"] = title
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			return nil, apperrors.NewValidationError("description cannot be empty", map[string]any{"field": "description"})
		}
		fields["description"] = description
	}

	var replaced *domain.StoredFile
	if file != nil && file.Body != nil {
		replaced, err = s.files.Put(ctx, *file)
		if err != nil {
			return nil, uploadError("upload gallery image", err)
		}
		fields["imageId"] = replaced.ID
		fields["imageUrl"] = s.files.ViewURL(replaced.ID)
	}
	if len(fields) == 0 {
		return current, nil
	}

	image, err := s.images.Update(ctx, id, fields)
	if err != nil {
		if replaced != nil {
			s.discardFile(ctx, replaced.ID)
		}
		return nil, lookupError("update gallery image", "gallery image", id, err)
	}
	if replaced != nil && current.ImageID != "" {
		s.discardFile(ctx, current.ImageID)
	}

	s.publish(ctx, events.KindUpdate, image.ID, image)
	return image, nil
}

// Delete removes the file and then the document. A failed file delete leaves the document
// in place; a failed document delete after the file is gone reports the dangling document.
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	image, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if image.ImageID != "" {
		if err := s.files.Delete(ctx, image.ImageID); err != nil && !errors.Is(err, repository.ErrFileNotFound) {
			return backendError("delete gallery file", err)
		}
	}
	if err := s.images.Delete(ctx, id); err != nil {
		s.logger.Error("gallery document left without file", zap.String("id", id), zap.String("image_id", image.ImageID), zap.Error(err))
		return apperrors.NewDanglingDocumentError("delete gallery image", id, err)
	}

	s.publish(ctx, events.KindDelete, id, image)
	return nil
}

// Subscribe streams gallery change events to handler until the returned function is
// called. Delivery is at-least-once and may repeat events; wrap handler with
// events.DedupeCreates to drop repeated creates.
func (s *GalleryService) Subscribe(ctx context.Context, handler events.Handler) (func(), error) {
	if s.dispatcher == nil {
		return func() {}, nil
	}
	unsubscribe, err := s.dispatcher.Subscribe(ctx, events.TopicGallery, handler)
	if err != nil {
		return nil, backendError("subscribe gallery", err)
	}
	return unsubscribe, nil
}

func (s *GalleryService) publish(ctx context.Context, kind events.Kind, id string, image *domain.GalleryImage) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, events.NewEvent(events.TopicGallery, kind, id, image)); err != nil {
		s.logger.Warn("gallery event not published", zap.String("kind", string(kind)), zap.String("id", id), zap.Error(err))
	}
}

func (s *GalleryService) discardFile(ctx context.Context, fileID string) {
	if err := s.files.Delete(ctx, fileID); err != nil {
		s.logger.Error("stored file left without document", zap.String("file_id", fileID), zap.Error(err))
	}
}
