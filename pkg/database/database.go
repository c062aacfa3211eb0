package database

import (
	"encoding/json"
	"fmt"
	"log"

	"cogniedu_backend/internal/config"
	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	if err := Seed(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.ScoreRecord{},
		&model.Content{},
		&model.Exam{},
		&model.Question{},
		&model.Attempt{},
		&model.ExamSession{},
		&model.Alert{},
	)
}

// Seed inserts the placement exam and a pair of starter contents when the
// database is empty. Seeded text is Persian, matching the product UI.
func Seed(db *gorm.DB) error {
	var examCount int64
	db.Model(&model.Exam{}).Where("is_placement = ?", true).Count(&examCount)
	if examCount == 0 {
		placement := &model.Exam{
			Title:       "آزمون تعیین سطح شناختی اولیه",
			IsPlacement: true,
			TimeLimit:   20,
			IsActive:    true,
		}
		if err := db.Create(placement).Error; err != nil {
			return err
		}

		opts, _ := json.Marshal([]string{"تفکر انتقادی", "حافظه کوتاه‌مدت", "سرعت تایپ", "قدرت بدنی"})
		correct := 0
		questions := []model.Question{
			{
				ExamID:        placement.ID,
				Text:          "کدام یک از مهارت‌های زیر در حل مسائل پیچیده نقش کلیدی دارد؟",
				Kind:          model.QuestionMCQ,
				Options:       opts,
				CorrectOption: &correct,
				Order:         1,
			},
			{
				ExamID: placement.ID,
				Text:   "توضیح دهید چگونه مدیریت زمان می‌تواند بر کاهش استرس شناختی موثر باشد؟",
				Kind:   model.QuestionDescriptive,
				Order:  2,
			},
		}
		for i := range questions {
			if err := db.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
	}

	var userCount int64
	db.Model(&model.User{}).Count(&userCount)
	if userCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		teacher := &model.User{
			Name:     "دکتر علوی",
			Email:    "alavi@edu.ir",
			Password: string(hash),
			Role:     model.RoleTeacher,
			Level:    util.StaffDefaultLevel,
		}
		if err := db.Create(teacher).Error; err != nil {
			return err
		}
		admin := &model.User{
			Name:     "مدیر سامانه",
			Email:    "admin@cogni.ir",
			Password: string(hash),
			Role:     model.RoleAdmin,
			Level:    util.MaxLevel,
		}
		if err := db.Create(admin).Error; err != nil {
			return err
		}

		var contentCount int64
		db.Model(&model.Content{}).Count(&contentCount)
		if contentCount == 0 {
			memory := &model.Content{
				Title:           "اصول حافظه فعال",
				Description:     "آشنایی با مکانیزم‌های ذخیره‌سازی اطلاعات در مغز.",
				Kind:            model.ContentText,
				MinLevel:        1,
				MaxLevel:        3,
				DurationMinutes: 15,
				AuthorID:        teacher.ID,
				IsActive:        true,
				Body:            "حافظه فعال یکی از حیاتی‌ترین بخش‌های سیستم شناختی انسان است...",
			}
			if err := db.Create(memory).Error; err != nil {
				return err
			}
			focus := &model.Content{
				Title:           "تمرکز حواس در محیط کار",
				Description:     "چگونه تمرکز خود را در محیط‌های شلوغ حفظ کنیم؟",
				Kind:            model.ContentVideo,
				MinLevel:        2,
				MaxLevel:        5,
				DurationMinutes: 10,
				AuthorID:        teacher.ID,
				IsActive:        true,
				VideoURL:        "https://sample-videos.com/video123/mp4/720/big_buck_bunny_720p_1mb.mp4",
			}
			if err := db.Create(focus).Error; err != nil {
				return err
			}

			quizOpts, _ := json.Marshal([]string{"۳", "۷", "۱۲", "۲۰"})
			quizCorrect := 1
			quiz := &model.Exam{
				Title:     "کوییز اصول حافظه فعال",
				ContentID: &memory.ID,
				TimeLimit: 10,
				IsActive:  true,
			}
			if err := db.Create(quiz).Error; err != nil {
				return err
			}
			q := &model.Question{
				ExamID:        quiz.ID,
				Text:          "ظرفیت متوسط حافظه فعال چند واحد است؟",
				Kind:          model.QuestionMCQ,
				Options:       quizOpts,
				CorrectOption: &quizCorrect,
				Order:         1,
			}
			if err := db.Create(q).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
