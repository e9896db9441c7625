// DTOs for the metered assistant features
package dto

type CoverLetterRequest struct {
	JobDescription string `json:"job_description" validate:"required,min=30,max=20000"`
	CVText         string `json:"cv_text" validate:"required,min=30,max=30000"`
	CompanyName    string `json:"company_name" validate:"max=200"`
	RoleTitle      string `json:"role_title" validate:"max=200"`
	Tone           string `json:"tone" validate:"omitempty,oneof=formal friendly enthusiastic"`
}

type CVSuggestionsRequest struct {
	JobDescription string `json:"job_description" validate:"required,min=30,max=20000"`
	CVText         string `json:"cv_text" validate:"required,min=30,max=30000"`
	MaxSuggestions int    `json:"max_suggestions" validate:"omitempty,min=1,max=15"`
}

type ATSScoreRequest struct {
	JobDescription string `json:"job_description" validate:"required,min=30,max=20000"`
	CVText         string `json:"cv_text" validate:"required,min=30,max=30000"`
}

type AssistantResponse struct {
	Content    string               `json:"content"`
	ModelClass string               `json:"model_class"`
	Usage      FeatureUsageResponse `json:"usage"`
}

type ATSScoreResponse struct {
	Score           int                  `json:"score"`
	KeywordScore    int                  `json:"keyword_score"`
	SectionScore    int                  `json:"section_score"`
	LengthScore     int                  `json:"length_score"`
	MatchedKeywords []string             `json:"matched_keywords"`
	MissingKeywords []string             `json:"missing_keywords"`
	MissingSections []string             `json:"missing_sections,omitempty"`
	Usage           FeatureUsageResponse `json:"usage"`
}
