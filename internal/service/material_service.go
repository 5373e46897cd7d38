package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
	"github.com/devsanbid/bravo-test-sub001/internal/repository"
	apperrors "github.com/devsanbid/bravo-test-sub001/pkg/util"
)

// MaterialInput describes a new study material.
type MaterialInput struct {
	Title       string
	Description string
	Category    string
	UploadedBy  string
}

// MaterialPatch carries the fields to change; nil fields are left alone.
type MaterialPatch struct {
	Title       *string
	Description *string
	Category    *string
}

// MaterialService manages study materials and their files.
type MaterialService struct {
	materials repository.MaterialRepository
	files     repository.FileStore
	logger    *zap.Logger
}

// NewMaterialService constructs the service.
func NewMaterialService(materials repository.MaterialRepository, files repository.FileStore, logger *zap.Logger) *MaterialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{materials: materials, files: files, logger: logger}
}

// Create uploads the file and then writes the document; a failed document write deletes
// the uploaded file again.
func (s *MaterialService) Create(ctx context.Context, in MaterialInput, file *repository.FileUpload) (*domain.StudyMaterial, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	if err := missingFields(map[string]string{"title": in.Title, "category": in.Category}); err != nil {
		return nil, err
	}
	if file == nil || file.Body == nil {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": []string{"file"}})
	}

	stored, err := s.files.Put(ctx, *file)
	if err != nil {
		return nil, uploadError("upload study material", err)
	}

	material := &domain.StudyMaterial{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		FileID:      stored.ID,
		FileURL:     s.files.ViewURL(stored.ID),
		FileName:    stored.Name,
		UploadedBy:  in.UploadedBy,
	}
	if err := s.materials.Create(ctx, material); err != nil {
		s.discardFile(ctx, stored.ID)
		return nil, backendError("create study material", err)
	}
	return material, nil
}

// List returns materials newest-first, restricted to category when given.
func (s *MaterialService) List(ctx context.Context, category string, limit, offset int) (*repository.Page[domain.StudyMaterial], error) {
	limit, offset = normalizePage(limit, offset)
	page, err := s.materials.List(ctx, strings.TrimSpace(category), limit, offset)
	if err != nil {
		return nil, backendError("list study materials", err)
	}
	return page, nil
}

func (s *MaterialService) GetByID(ctx context.Context, id string) (*domain.StudyMaterial, error) {
	material, err := s.materials.Get(ctx, id)
	if err != nil {
		return nil, lookupError("get study material", "study material", id, err)
	}
	return material, nil
}

// Update changes metadata and optionally replaces the file.
func (s *MaterialService) Update(ctx context.Context, id string, patch MaterialPatch, file *repository.FileUpload) (*domain.StudyMaterial, error) {
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
		fields["description"] = *patch.Description
	}
	if patch.Category != nil {
		category := strings.TrimSpace(*patch.Category)
		if category == "" {
			return nil, apperrors.NewValidationError("category cannot be empty", map[string]any{"field": "category"})
		}
		fields["category"] = category
	}

	var replaced *domain.StoredFile
	if file != nil && file.Body != nil {
		replaced, err = s.files.Put(ctx, *file)
		if err != nil {
			return nil, uploadError("upload study material", err)
		}
		fields["fileId"] = replaced.ID
		fields["fileUrl"] = s.files.ViewURL(replaced.ID)
		fields["fileName"] = replaced.Name
	}
	if len(fields) == 0 {
		return current, nil
	}

	material, err := s.materials.Update(ctx, id, fields)
	if err != nil {
		if replaced != nil {
			s.discardFile(ctx, replaced.ID)
		}
		return nil, lookupError("update study material", "study material", id, err)
	}
	if replaced != nil && current.FileID != "" {
		s.discardFile(ctx, current.FileID)
	}
	return material, nil
}

// Delete removes the file and then the document. The document is always loaded first: a
// missing document is NotFound before storage is touched, and a fileID that is not the
// document's own file is rejected. An empty fileID means the document's file. A failed
// file delete leaves the document untouched.
func (s *MaterialService) Delete(ctx context.Context, id, fileID string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("missing required fields", map[string]any{"fields": []string{"id"}})
	}
	material, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if fileID != "" && fileID != material.FileID {
		return apperrors.NewValidationError("file does not belong to study material",
			map[string]any{"id": id, "fileId": fileID})
	}
	fileID = material.FileID

	if fileID != "" {
		if err := s.files.Delete(ctx, fileID); err != nil && !errors.Is(err, repository.ErrFileNotFound) {
			return backendError("delete study material file", err)
		}
	}
	if err := s.materials.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return apperrors.NewNotFound("study material", map[string]any{"id": id})
		}
		s.logger.Error("study material left without file", zap.String("id", id), zap.String("file_id", fileID), zap.Error(err))
		return apperrors.NewDanglingDocumentError("delete study material", id, err)
	}
	return nil
}

func (s *MaterialService) discardFile(ctx context.Context, fileID string) {
	if err := s.files.Delete(ctx, fileID); err != nil {
		s.logger.Error("stored file left without document", zap.String("file_id", fileID), zap.Error(err))
	}
}
