package repository

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

type tickingClock struct{ t time.Time }

func (c *tickingClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newStore() *MemoryDocumentStore {
	store := NewMemoryDocumentStore()
	clock := &tickingClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store.SetClock(clock.now)
	return store
}

func TestMemoryDocumentStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := newStore()

	doc, err := store.Create(ctx, "blogs", "b1", map[string]any{"title": "first"})
	require.NoError(t, err)
	assert.False(t, doc.CreatedAt.IsZero())

	_, err = store.Create(ctx, "blogs", "b1", map[string]any{})
	assert.ErrorIs(t, err, ErrDocumentExists)

	updated, err := store.Update(ctx, "blogs", "b1", map[string]any{"title": "second", "slug": "s"})
	require.NoError(t, err)
	assert.Equal(t, "second", updated.Data["title"])
	assert.Equal(t, "s", updated.Data["slug"])

	require.NoError(t, store.Delete(ctx, "blogs", "b1"))
	_, err = store.Get(ctx, "blogs", "b1")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "blogs", "b1"), ErrDocumentNotFound)
	_, err = store.Update(ctx, "blogs", "b1", nil)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestMemoryDocumentStorePaging(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	for _, id := range []string{"a", "b", "c", "d"} {
		_, err := store.Create(ctx, "c", id, map[string]any{"n": id})
		require.NoError(t, err)
	}

	list, err := store.List(ctx, "c", DocumentQuery{Limit: 2, Offset: 1, NewestFirst: true})
	require.NoError(t, err)
	assert.Equal(t, 4, list.Total)
	require.Len(t, list.Documents, 2)
	assert.Equal(t, "c", list.Documents[0].ID)
	assert.Equal(t, "b", list.Documents[1].ID)

	list, err = store.List(ctx, "c", DocumentQuery{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, list.Documents)
}

func TestMaterialListFiltersByCategoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMaterialRepository(newStore(), "materials")

	for _, m := range []domain.StudyMaterial{
		{Title: "Reading", Category: "IELTS"},
		{Title: "Speaking", Category: "PTE"},
		{Title: "Writing", Category: "IELTS"},
		{Title: "Math", Category: "SAT"},
		{Title: "Listening", Category: "IELTS"},
	} {
		m := m
		require.NoError(t, repo.Create(ctx, &m))
	}

	page, err := repo.List(ctx, "IELTS", 25, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	titles := make([]string, 0, len(page.Items))
	for i, item := range page.Items {
		assert.Equal(t, "IELTS", item.Category)
		if i > 0 {
			assert.True(t, page.Items[i-1].CreatedAt.After(item.CreatedAt))
		}
		titles = append(titles, item.Title)
	}
	assert.Equal(t, []string{"Listening", "Writing", "Reading"}, titles)
}

func TestBlogListPublishedOnly(t *testing.T) {
	ctx := context.Background()
	repo := NewBlogRepository(newStore(), "blogs")

	require.NoError(t, repo.Create(ctx, &domain.BlogPost{Title: "draft"}))
	require.NoError(t, repo.Create(ctx, &domain.BlogPost{Title: "live", Published: true, Tags: []string{"ielts"}}))

	page, err := repo.List(ctx, true, 25, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "live", page.Items[0].Title)
	assert.Equal(t, []string{"ielts"}, page.Items[0].Tags)

	page, err = repo.List(ctx, false, 25, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestProfileLookupByUserID(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(newStore(), "users")

	profile := &domain.Profile{UserID: "acc-1", FirstName: "Asha", LastName: "Rai", Role: domain.RoleStudent}
	require.NoError(t, repo.Create(ctx, profile))
	assert.Equal(t, "users", profile.CollectionID)

	got, err := repo.GetByUserID(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)
	assert.Equal(t, domain.RoleStudent, got.Role)

	_, err = repo.GetByUserID(ctx, "acc-2")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestFieldHelpers(t *testing.T) {
	data := map[string]any{
		"tags":  []any{"a", 1, "b"},
		"flag":  "true",
		"count": float64(3),
	}
	assert.Equal(t, []string{"a", "b"}, stringSliceField(data, "tags"))
	assert.Equal(t, []string{}, stringSliceField(data, "missing"))
	assert.True(t, boolField(data, "flag"))
	assert.False(t, boolField(data, "missing"))
	assert.Equal(t, "3", stringField(data, "count"))
	assert.Equal(t, "", stringField(data, "missing"))
}

func TestMemoryFileStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryFileStore("media", "https://prep.example")

	file, err := store.Put(ctx, FileUpload{Name: "a.png", ContentType: "image/png", Body: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, int64(3), file.SizeBytes)
	assert.Equal(t, "https://prep.example/api/storage/media/files/"+file.ID+"/view", store.ViewURL(file.ID))

	meta, body, err := store.Open(ctx, file.ID)
	require.NoError(t, err)
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "png", string(raw))
	assert.Equal(t, "a.png", meta.Name)

	require.NoError(t, store.Delete(ctx, file.ID))
	assert.False(t, store.Has(file.ID))
	assert.ErrorIs(t, store.Delete(ctx, file.ID), ErrFileNotFound)
}
