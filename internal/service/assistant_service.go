package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-jobassist-be/internal/constant"
	"ai-jobassist-be/internal/dto"
	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/mapper"
	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/pkg/ats"
	"ai-jobassist-be/pkg/llm"
	"ai-jobassist-be/pkg/paywall"
	"ai-jobassist-be/pkg/utils"

	"github.com/google/uuid"
)

type IAssistantService interface {
	GenerateCoverLetter(ctx context.Context, userId uuid.UUID, req *dto.CoverLetterRequest) (*dto.AssistantResponse, error)
	SuggestCVImprovements(ctx context.Context, userId uuid.UUID, req *dto.CVSuggestionsRequest) (*dto.AssistantResponse, error)
	ScoreATS(ctx context.Context, userId uuid.UUID, req *dto.ATSScoreRequest) (*dto.ATSScoreResponse, error)
}

// ModelNames maps the paywall's model classes onto concrete provider models.
type ModelNames struct {
	Cheap   string
	Capable string
}

func (m ModelNames) For(class entity.ModelClass) string {
	if class == entity.ModelClassCapable && m.Capable != "" {
		return m.Capable
	}
	return m.Cheap
}

type assistantService struct {
	gate         *paywall.Gate
	llm          llm.LLMProvider
	models       ModelNames
	timeout      time.Duration
	logger       logger.ILogger
	accessMapper *mapper.AccessMapper
}

func NewAssistantService(gate *paywall.Gate, provider llm.LLMProvider, models ModelNames, timeout time.Duration, log logger.ILogger) IAssistantService {
	return &assistantService{
		gate:         gate,
		llm:          provider,
		models:       models,
		timeout:      timeout,
		logger:       log,
		accessMapper: mapper.NewAccessMapper(),
	}
}

func (s *assistantService) GenerateCoverLetter(ctx context.Context, userId uuid.UUID, req *dto.CoverLetterRequest) (*dto.AssistantResponse, error) {
	cv, posting, err := cleanDocuments(req.CVText, req.JobDescription)
	if err != nil {
		return nil, err
	}

	tone := req.Tone
	if tone == "" {
		tone = "formal"
	}
	prompt := fmt.Sprintf(constant.CoverLetterPrompt,
		constant.MaxCoverLetterWords,
		orUnknown(req.CompanyName),
		orUnknown(req.RoleTitle),
		tone,
		posting,
		cv,
	)
	return s.generate(ctx, userId, entity.FeatureCoverLetters, prompt, 900)
}

func (s *assistantService) SuggestCVImprovements(ctx context.Context, userId uuid.UUID, req *dto.CVSuggestionsRequest) (*dto.AssistantResponse, error) {
	cv, posting, err := cleanDocuments(req.CVText, req.JobDescription)
	if err != nil {
		return nil, err
	}

	count := req.MaxSuggestions
	if count == 0 {
		count = 8
	}
	prompt := fmt.Sprintf(constant.CVSuggestionsPrompt, posting, cv, count)
	return s.generate(ctx, userId, entity.FeatureCVGenerations, prompt, 1200)
}

func (s *assistantService) ScoreATS(ctx context.Context, userId uuid.UUID, req *dto.ATSScoreRequest) (*dto.ATSScoreResponse, error) {
	cv, posting, err := cleanDocuments(req.CVText, req.JobDescription)
	if err != nil {
		return nil, err
	}

	decision, err := s.authorize(ctx, userId, entity.FeatureATSScores)
	if err != nil {
		return nil, err
	}

	result, err := ats.Score(cv, posting)
	if err != nil {
		return nil, err
	}
	return &dto.ATSScoreResponse{
		Score:           result.Score,
		KeywordScore:    result.KeywordScore,
		SectionScore:    result.SectionScore,
		LengthScore:     result.LengthScore,
		MatchedKeywords: result.MatchedKeywords,
		MissingKeywords: result.MissingKeywords,
		MissingSections: result.MissingSections,
		Usage:           s.accessMapper.DecisionToUsage(decision),
	}, nil
}

// authorize records one use or returns the denial as an error.
func (s *assistantService) authorize(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey) (*entity.AccessDecision, error) {
	decision, err := s.gate.CheckAndRecordUsage(ctx, userId, feature)
	if err != nil {
		return nil, err
	}
	if err := paywall.Denied(decision); err != nil {
		return nil, err
	}
	return decision, nil
}

// generate spends one use before calling the model. A failed generation is
// not refunded.
func (s *assistantService) generate(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey, prompt string, maxTokens int) (*dto.AssistantResponse, error) {
	decision, err := s.authorize(ctx, userId, feature)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	model := s.models.For(decision.ModelClass)
	start := time.Now()
	content, err := s.llm.Chat(callCtx, []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.AssistantSystemPrompt},
		{Role: constant.ChatMessageRoleUser, Content: prompt},
	}, llm.WithModel(model), llm.WithMaxTokens(maxTokens), llm.WithTemperature(0.4))
	if err != nil {
		s.logger.Error("ASSISTANT", "Generation failed after usage was recorded", map[string]interface{}{
			"user_id": userId.String(),
			"feature": string(feature),
			"model":   model,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}

	s.logger.Info("ASSISTANT", "Generation completed", map[string]interface{}{
		"user_id":     userId.String(),
		"feature":     string(feature),
		"model":       model,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return &dto.AssistantResponse{
		Content:    strings.TrimSpace(content),
		ModelClass: string(decision.ModelClass),
		Usage:      s.accessMapper.DecisionToUsage(decision),
	}, nil
}

func cleanDocuments(cv, posting string) (string, string, error) {
	cv = utils.TruncateRunes(utils.CollapseWhitespace(cv), constant.MaxCVRunes)
	posting = utils.TruncateRunes(utils.CollapseWhitespace(posting), constant.MaxJobPostingRunes)
	if cv == "" || posting == "" {
		return "", "", ErrEmptyDocument
	}
	return cv, posting, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not specified"
	}
	return s
}
