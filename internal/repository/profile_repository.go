package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

// ProfileRepository reads and writes user profile documents.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	Delete(ctx context.Context, id string) error
}

type profileRepository struct {
	store      DocumentStore
	collection string
}

// NewProfileRepository binds profiles to the users collection.
func NewProfileRepository(store DocumentStore, collection string) ProfileRepository {
	return &profileRepository{store: store, collection: collection}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	doc, err := r.store.Create(ctx, r.collection, profile.ID, map[string]any{
		"userId":      profile.UserID,
		"firstName":   profile.FirstName,
		"middleName":  profile.MiddleName,
		"lastName":    profile.LastName,
		"email":       profile.Email,
		"gender":      profile.Gender,
		"dateOfBirth": profile.DateOfBirth,
		"phone":       profile.Phone,
		"service":     profile.Service,
		"role":        string(profile.Role),
	})
	if err != nil {
		return err
	}
	profile.CollectionID = r.collection
	profile.CreatedAt = doc.CreatedAt
	profile.UpdatedAt = doc.UpdatedAt
	return nil
}

// GetByUserID returns the profile whose userId equals the identity id.
func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	list, err := r.store.List(ctx, r.collection, DocumentQuery{
		Filters: []Equal{{Field: "userId", Value: userID}},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(list.Documents) == 0 {
		return nil, ErrDocumentNotFound
	}
	return toProfile(&list.Documents[0]), nil
}

func (r *profileRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.collection, id)
}

func toProfile(doc *Document) *domain.Profile {
	return &domain.Profile{
		ID:           doc.ID,
		CollectionID: doc.Collection,
		UserID:       stringField(doc.Data, "userId"),
		FirstName:    stringField(doc.Data, "firstName"),
		MiddleName:   stringField(doc.Data, "middleName"),
		LastName:     stringField(doc.Data, "lastName"),
		Email:        stringField(doc.Data, "email"),
		Gender:       stringField(doc.Data, "gender"),
		DateOfBirth:  stringField(doc.Data, "dateOfBirth"),
		Phone:        stringField(doc.Data, "phone"),
		Service:      stringField(doc.Data, "service"),
		Role:         domain.Role(stringField(doc.Data, "role")),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}
