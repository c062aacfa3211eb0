package repository

import (
	"cogniedu_backend/internal/model"

	"gorm.io/gorm"
)

type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) Create(content *model.Content) error {
	return r.DB.Create(content).Error
}

func (r *ContentRepository) FindByID(id uint) (*model.Content, error) {
	var content model.Content
	err := r.DB.First(&content, id).Error
	return &content, err
}

func (r *ContentRepository) Update(content *model.Content) error {
	return r.DB.Save(content).Error
}

func (r *ContentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Content{}, id).Error
}

// ListActive returns active contents ordered by the level band they target.
func (r *ContentRepository) ListActive() ([]model.Content, error) {
	var contents []model.Content
	err := r.DB.Where("is_active = ?", true).Order("min_level, id").Find(&contents).Error
	return contents, err
}

func (r *ContentRepository) ListAll() ([]model.Content, error) {
	var contents []model.Content
	err := r.DB.Order("id").Find(&contents).Error
	return contents, err
}

func (r *ContentRepository) ListByAuthor(authorID uint) ([]model.Content, error) {
	var contents []model.Content
	err := r.DB.Where("author_id = ?", authorID).Order("id").Find(&contents).Error
	return contents, err
}
