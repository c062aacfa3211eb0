package repository

import (
	"cogniedu_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) Create(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

// questionOrder sorts preloaded questions by their authored position.
// "order" is a reserved word, so it goes through the clause builder for
// dialect-safe quoting.
func questionOrder(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}})
}

func (r *ExamRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.Preload("Questions", questionOrder).First(&exam, id).Error
	return &exam, err
}

// FindPlacement returns the active placement exam.
func (r *ExamRepository) FindPlacement() (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.Preload("Questions", questionOrder).
		Where("is_placement = ? AND is_active = ?", true, true).First(&exam).Error
	return &exam, err
}

func (r *ExamRepository) FindByContent(contentID uint) ([]model.Exam, error) {
	var exams []model.Exam
	err := r.DB.Preload("Questions").
		Where("content_id = ? AND is_active = ?", contentID, true).
		Find(&exams).Error
	return exams, err
}

func (r *ExamRepository) Update(exam *model.Exam) error {
	return r.DB.Save(exam).Error
}

func (r *ExamRepository) ListAll() ([]model.Exam, error) {
	var exams []model.Exam
	err := r.DB.Preload("Questions").Order("id").Find(&exams).Error
	return exams, err
}
