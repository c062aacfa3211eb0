package service

import (
	"testing"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/repository"
	"cogniedu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newContentService(db *gorm.DB) *ContentService {
	return NewContentService(
		repository.NewContentRepository(db),
		repository.NewExamRepository(db),
		nil)
}

func TestContentCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	author := createUser(t, db, model.RoleTeacher, util.StaffDefaultLevel, 0)

	base := ContentRequest{
		Title:    "خواندن نقادانه",
		Kind:     model.ContentText,
		MinLevel: 2,
		MaxLevel: 4,
		Body:     "متن درس",
	}

	t.Run("valid text content", func(t *testing.T) {
		content, err := svc.Create(author.ID, base)
		require.NoError(t, err)
		assert.True(t, content.IsActive)
		assert.Equal(t, author.ID, content.AuthorID)
	})

	t.Run("text without a body", func(t *testing.T) {
		req := base
		req.Body = ""
		_, err := svc.Create(author.ID, req)
		assert.Error(t, err)
	})

	t.Run("level band out of range", func(t *testing.T) {
		req := base
		req.MinLevel = 0
		_, err := svc.Create(author.ID, req)
		assert.Error(t, err)

		req = base
		req.MaxLevel = 1
		_, err = svc.Create(author.ID, req)
		assert.Error(t, err)
	})

	t.Run("video without a url", func(t *testing.T) {
		req := base
		req.Kind = model.ContentVideo
		_, err := svc.Create(author.ID, req)
		assert.Error(t, err)
	})

	t.Run("scenario steps are validated", func(t *testing.T) {
		req := base
		req.Kind = model.ContentScenario
		req.Body = ""
		req.Steps = nil
		_, err := svc.Create(author.ID, req)
		assert.Error(t, err)

		req.Steps = sampleSteps()
		content, err := svc.Create(author.ID, req)
		require.NoError(t, err)
		steps, err := content.ScenarioSteps()
		require.NoError(t, err)
		assert.Len(t, steps, len(sampleSteps()))
	})
}

func TestContentUpdatePermissions(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	author := createUser(t, db, model.RoleTeacher, util.StaffDefaultLevel, 0)
	other := createUser(t, db, model.RoleTeacher, util.StaffDefaultLevel, 0)
	admin := createUser(t, db, model.RoleAdmin, util.MaxLevel, 0)

	req := ContentRequest{
		Title:    "درس",
		Kind:     model.ContentText,
		MinLevel: 1,
		MaxLevel: 3,
		Body:     "متن",
	}
	content, err := svc.Create(author.ID, req)
	require.NoError(t, err)

	req.Title = "درس ویرایش شده"
	_, err = svc.Update(other, content.ID, req)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	updated, err := svc.Update(admin, content.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "درس ویرایش شده", updated.Title)

	assert.ErrorIs(t, svc.Delete(other, content.ID), util.ErrPermissionDenied)
	require.NoError(t, svc.Delete(author, content.ID))
	_, _, err = svc.Get(admin, content.ID)
	assert.ErrorIs(t, err, util.ErrContentNotFound)
}

func TestGetHidesInactiveFromCitizens(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	author := createUser(t, db, model.RoleTeacher, util.StaffDefaultLevel, 0)
	citizen := createUser(t, db, model.RoleCitizen, 3, 0)

	inactive := false
	content, err := svc.Create(author.ID, ContentRequest{
		Title:    "پیش‌نویس",
		Kind:     model.ContentText,
		MinLevel: 1,
		MaxLevel: 5,
		Body:     "متن",
		IsActive: &inactive,
	})
	require.NoError(t, err)

	// The inactive flag must survive the insert as written.
	var reloaded model.Content
	require.NoError(t, db.First(&reloaded, content.ID).Error)
	assert.False(t, reloaded.IsActive)

	_, _, err = svc.Get(citizen, content.ID)
	assert.ErrorIs(t, err, util.ErrContentNotFound)

	// The author still sees their draft.
	_, _, err = svc.Get(author, content.ID)
	require.NoError(t, err)
}

func TestGetLibraryBuckets(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	author := createUser(t, db, model.RoleTeacher, util.StaffDefaultLevel, 0)
	citizen := createUser(t, db, model.RoleCitizen, 3, 0)

	mk := func(title string, minLevel, maxLevel int) {
		_, err := svc.Create(author.ID, ContentRequest{
			Title:    title,
			Kind:     model.ContentText,
			MinLevel: minLevel,
			MaxLevel: maxLevel,
			Body:     "متن",
		})
		require.NoError(t, err)
	}
	mk("at level a", 3, 5)
	mk("at level b", 3, 4)
	mk("at level c", 3, 6)
	mk("outgrown", 1, 2)
	mk("locked", 5, 8)

	lib, err := svc.GetLibrary(citizen)
	require.NoError(t, err)

	// At most two recommendations; the rest of the matching items stay
	// available.
	require.Len(t, lib.Recommended, 2)
	assert.Equal(t, "at level a", lib.Recommended[0].Title)
	assert.Equal(t, "at level b", lib.Recommended[1].Title)
	require.Len(t, lib.Available, 2)
	require.Len(t, lib.Locked, 1)
	assert.Equal(t, "locked", lib.Locked[0].Title)
}
