package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/repository"
	"cogniedu_backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cogniedu_backend/pkg/logger"
)

// ContentService covers authoring and the citizen-facing library.
type ContentService struct {
	ContentRepo *repository.ContentRepository
	ExamRepo    *repository.ExamRepository
	Storage     *StorageService
}

func NewContentService(contentRepo *repository.ContentRepository, examRepo *repository.ExamRepository,
	storage *StorageService) *ContentService {
	return &ContentService{ContentRepo: contentRepo, ExamRepo: examRepo, Storage: storage}
}

type ContentRequest struct {
	Title           string               `json:"title" binding:"required"`
	Description     string               `json:"description"`
	Kind            model.ContentKind    `json:"kind" binding:"required"`
	MinLevel        int                  `json:"minLevel" binding:"required"`
	MaxLevel        int                  `json:"maxLevel" binding:"required"`
	DurationMinutes int                  `json:"durationMinutes"`
	IsActive        *bool                `json:"isActive"`
	Body            string               `json:"body"`
	VideoURL        string               `json:"videoUrl"`
	Steps           []model.ScenarioStep `json:"steps"`
}

// Library buckets the active catalog for one citizen. Locked items show
// their level requirement but hide the body.
type Library struct {
	Available   []LibraryItem `json:"available"`
	Recommended []LibraryItem `json:"recommended"`
	Locked      []LibraryItem `json:"locked"`
}

type LibraryItem struct {
	ID              uint              `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Kind            model.ContentKind `json:"kind"`
	MinLevel        int               `json:"minLevel"`
	MaxLevel        int               `json:"maxLevel"`
	DurationMinutes int               `json:"durationMinutes"`
}

func (s *ContentService) Create(authorID uint, req ContentRequest) (*model.Content, error) {
	content := &model.Content{
		Title:           req.Title,
		Description:     req.Description,
		Kind:            req.Kind,
		MinLevel:        req.MinLevel,
		MaxLevel:        req.MaxLevel,
		DurationMinutes: req.DurationMinutes,
		AuthorID:        authorID,
		IsActive:        true,
		Body:            req.Body,
		VideoURL:        req.VideoURL,
	}
	if req.IsActive != nil {
		content.IsActive = *req.IsActive
	}

	if err := s.applyKindFields(content, req); err != nil {
		return nil, err
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	if err := s.ContentRepo.Create(content); err != nil {
		return nil, err
	}
	logger.Log.Info("content created",
		zap.Uint("content_id", content.ID),
		zap.String("kind", string(content.Kind)),
		zap.Uint("author_id", authorID))
	return content, nil
}

func (s *ContentService) Update(actor *model.User, contentID uint, req ContentRequest) (*model.Content, error) {
	content, err := s.ContentRepo.FindByID(contentID)
	if err != nil {
		return nil, contentErr(err)
	}
	if actor.Role != model.RoleAdmin && content.AuthorID != actor.ID {
		return nil, util.ErrPermissionDenied
	}

	content.Title = req.Title
	content.Description = req.Description
	content.Kind = req.Kind
	content.MinLevel = req.MinLevel
	content.MaxLevel = req.MaxLevel
	content.DurationMinutes = req.DurationMinutes
	content.Body = req.Body
	content.VideoURL = req.VideoURL
	if req.IsActive != nil {
		content.IsActive = *req.IsActive
	}

	if err := s.applyKindFields(content, req); err != nil {
		return nil, err
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}
	if err := s.ContentRepo.Update(content); err != nil {
		return nil, err
	}
	return content, nil
}

func (s *ContentService) Delete(actor *model.User, contentID uint) error {
	content, err := s.ContentRepo.FindByID(contentID)
	if err != nil {
		return contentErr(err)
	}
	if actor.Role != model.RoleAdmin && content.AuthorID != actor.ID {
		return util.ErrPermissionDenied
	}
	return s.ContentRepo.Delete(contentID)
}

// Get returns a content item for reading, enforcing the level gate.
func (s *ContentService) Get(user *model.User, contentID uint) (*model.Content, []model.Exam, error) {
	content, err := s.ContentRepo.FindByID(contentID)
	if err != nil {
		return nil, nil, contentErr(err)
	}
	if !content.IsActive && user.Role == model.RoleCitizen {
		return nil, nil, util.ErrContentNotFound
	}
	if !CanAccessContent(user, content) {
		return nil, nil, util.ErrPermissionDenied
	}

	exams, err := s.ExamRepo.FindByContent(contentID)
	if err != nil {
		return nil, nil, err
	}
	return content, exams, nil
}

// maxRecommended bounds the recommended shelf; overflow stays available.
const maxRecommended = 2

// GetLibrary splits the active catalog into what the user can open now,
// what matches their current level as a recommendation, and what is still
// locked.
func (s *ContentService) GetLibrary(user *model.User) (*Library, error) {
	contents, err := s.ContentRepo.ListActive()
	if err != nil {
		return nil, err
	}

	lib := &Library{
		Available:   []LibraryItem{},
		Recommended: []LibraryItem{},
		Locked:      []LibraryItem{},
	}
	for i := range contents {
		item := libraryItem(&contents[i])
		switch {
		case !CanAccessContent(user, &contents[i]):
			lib.Locked = append(lib.Locked, item)
		case IsRecommended(user, &contents[i]) && len(lib.Recommended) < maxRecommended:
			lib.Recommended = append(lib.Recommended, item)
		default:
			lib.Available = append(lib.Available, item)
		}
	}
	return lib, nil
}

func (s *ContentService) ListForAuthor(actor *model.User) ([]model.Content, error) {
	if actor.Role == model.RoleAdmin {
		return s.ContentRepo.ListAll()
	}
	return s.ContentRepo.ListByAuthor(actor.ID)
}

// UploadVideo stores an uploaded video and probes its duration. The returned
// duration is in whole minutes, rounded up.
func (s *ContentService) UploadVideo(ctx context.Context, file *multipart.FileHeader) (string, int, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range util.AllowedVideoExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", 0, fmt.Errorf("unsupported video format: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", 0, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return "", 0, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.ReadFrom(src); err != nil {
		return "", 0, err
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		return "", 0, err
	}

	durationMinutes := 0
	if info, err := util.GetVideoInfo(tmp.Name()); err != nil {
		logger.Log.Warn("could not probe video duration", zap.Error(err))
	} else {
		durationMinutes = int(info.Duration+59) / 60
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, util.MimeVideo) {
		contentType = util.MimeOctetStream
	}

	filename := "videos/" + uuid.New().String() + ext
	url, err := s.Storage.Upload(ctx, filename, tmp, file.Size, contentType)
	if err != nil {
		return "", 0, err
	}
	return url, durationMinutes, nil
}

func (s *ContentService) applyKindFields(content *model.Content, req ContentRequest) error {
	switch content.Kind {
	case model.ContentText, model.ContentVideo:
		content.Steps = nil
	case model.ContentScenario:
		raw, err := json.Marshal(req.Steps)
		if err != nil {
			return err
		}
		content.Steps = raw
	default:
		return fmt.Errorf("unknown content kind: %s", content.Kind)
	}
	return nil
}

func validateContent(content *model.Content) error {
	if content.MinLevel < 1 || content.MinLevel > util.MaxLevel {
		return fmt.Errorf("minLevel must be between 1 and %d", util.MaxLevel)
	}
	if content.MaxLevel < content.MinLevel || content.MaxLevel > util.MaxLevel {
		return fmt.Errorf("maxLevel must be between minLevel and %d", util.MaxLevel)
	}

	switch content.Kind {
	case model.ContentText:
		if content.Body == "" {
			return errors.New("text content requires a body")
		}
	case model.ContentVideo:
		if content.VideoURL == "" {
			return errors.New("video content requires a video url")
		}
	case model.ContentScenario:
		steps, err := content.ScenarioSteps()
		if err != nil {
			return util.ErrMalformedScenario
		}
		return ValidateScenario(steps)
	}
	return nil
}

func libraryItem(content *model.Content) LibraryItem {
	return LibraryItem{
		ID:              content.ID,
		Title:           content.Title,
		Description:     content.Description,
		Kind:            content.Kind,
		MinLevel:        content.MinLevel,
		MaxLevel:        content.MaxLevel,
		DurationMinutes: content.DurationMinutes,
	}
}
