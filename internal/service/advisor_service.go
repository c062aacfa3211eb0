package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cogniedu_backend/internal/config"
	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/util"

	"go.uber.org/zap"

	"cogniedu_backend/pkg/logger"
)

// Persian fallback copy shown when the advisor backend is unreachable.
const (
	adviceFallback          = "در حال حاضر امکان دریافت تحلیل هوشمند وجود ندارد."
	gradeSuggestionFallback = "خطا در ارزیابی خودکار"
)

// AdvisorService calls an OpenAI compatible chat completion endpoint for
// study advice and grading suggestions. Every call degrades to a static
// Persian fallback; the advisor is never on the critical path.
type AdvisorService struct {
	config config.AdvisorConfig
	client *http.Client
}

func NewAdvisorService(cfg config.AdvisorConfig) *AdvisorService {
	return &AdvisorService{
		config: cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

type advisorMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message advisorMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GradeSuggestion is an advisory score for a descriptive attempt. A zero
// score with the fallback reason means the advisor was unavailable.
type GradeSuggestion struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// StudyAdvice returns a short Persian analysis of the user's score history.
func (s *AdvisorService) StudyAdvice(ctx context.Context, user *model.User, history []model.ScoreRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "کاربر در سطح %d با %d امتیاز تجربه است.\n", user.Level, user.XP)
	if len(history) == 0 {
		sb.WriteString("هنوز آزمونی ثبت نشده است.\n")
	}
	for _, r := range history {
		fmt.Fprintf(&sb, "- آزمون %d: نمره %d\n", r.ExamID, r.Score)
	}
	sb.WriteString("\nبا توجه به این سوابق، یک تحلیل کوتاه و دو پیشنهاد مشخص برای بهبود مهارت‌های شناختی این شهروند بنویس. پاسخ فقط به زبان فارسی باشد.")

	content, err := s.complete(ctx, []advisorMessage{
		{Role: "system", Content: "تو یک مشاور آموزشی سامانه سواد شناختی شهروندان هستی."},
		{Role: "user", Content: sb.String()},
	})
	if err != nil {
		logger.Log.Warn("advisor unavailable for study advice", zap.Error(err))
		return adviceFallback
	}
	return content
}

// SuggestGrade asks for a proposed score on an ungraded attempt. The model
// must answer with a JSON object holding score and reason.
func (s *AdvisorService) SuggestGrade(ctx context.Context, pending *PendingAttempt) (*GradeSuggestion, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "آزمون: %s\n", pending.ExamTitle)
	for _, a := range pending.Answers {
		if a.Kind != model.QuestionDescriptive {
			continue
		}
		fmt.Fprintf(&sb, "سوال: %s\nپاسخ شهروند: %s\n\n", a.QuestionText, a.Text)
	}
	sb.WriteString("پاسخ‌های تشریحی بالا را ارزیابی کن و فقط یک شیء JSON با کلیدهای score (عدد ۰ تا ۱۰۰) و reason (توضیح کوتاه فارسی) برگردان.")

	content, err := s.complete(ctx, []advisorMessage{
		{Role: "system", Content: "تو یک مصحح آزمون‌های سواد شناختی هستی. خروجی تو فقط JSON است."},
		{Role: "user", Content: sb.String()},
	})
	if err != nil {
		logger.Log.Warn("advisor unavailable for grade suggestion", zap.Error(err))
		return &GradeSuggestion{Score: 0, Reason: gradeSuggestionFallback}, nil
	}

	var suggestion GradeSuggestion
	if err := json.Unmarshal([]byte(extractJSON(content)), &suggestion); err != nil {
		logger.Log.Warn("advisor returned unparseable suggestion", zap.String("content", content))
		return &GradeSuggestion{Score: 0, Reason: gradeSuggestionFallback}, nil
	}
	if suggestion.Score < 0 {
		suggestion.Score = 0
	}
	if suggestion.Score > 100 {
		suggestion.Score = 100
	}
	return &suggestion, nil
}

func (s *AdvisorService) complete(ctx context.Context, messages []advisorMessage) (string, error) {
	if s.config.BaseURL == "" {
		return "", util.ErrAdvisorUnavailable
	}

	reqBody := map[string]interface{}{
		"model":    s.config.Model,
		"messages": messages,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("advisor API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("advisor API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", util.ErrAdvisorUnavailable
	}
	return parsed.Choices[0].Message.Content, nil
}

// extractJSON strips markdown code fences some models wrap around JSON.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			return content[start : end+1]
		}
	}
	return content
}
