package repository

import (
	"time"

	"cogniedu_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(session *model.ExamSession) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) FindByID(id string) (*model.ExamSession, error) {
	var session model.ExamSession
	err := r.DB.Where("id = ?", id).First(&session).Error
	return &session, err
}

func (r *SessionRepository) FindActiveByUserAndExam(userID, examID uint) (*model.ExamSession, error) {
	var session model.ExamSession
	err := r.DB.Where("user_id = ? AND exam_id = ? AND status = ?",
		userID, examID, model.SessionActive).First(&session).Error
	return &session, err
}

func (r *SessionRepository) Update(session *model.ExamSession) error {
	return r.DB.Save(session).Error
}

// Close flips an active session to the given status. The status guard makes
// the transition happen at most once even under concurrent submits.
func (r *SessionRepository) Close(id string, to model.SessionStatus) (bool, error) {
	return r.CloseTx(r.DB, id, to)
}

// CloseTx runs the guarded transition inside the caller's transaction, so a
// rolled-back grading leaves the session active and resubmittable.
func (r *SessionRepository) CloseTx(tx *gorm.DB, id string, to model.SessionStatus) (bool, error) {
	res := tx.Model(&model.ExamSession{}).
		Where("id = ? AND status = ?", id, model.SessionActive).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

func (r *SessionRepository) ListOverdue(now time.Time) ([]model.ExamSession, error) {
	var sessions []model.ExamSession
	err := r.DB.Where("status = ? AND expires_at <= ?", model.SessionActive, now).
		Find(&sessions).Error
	return sessions, err
}
