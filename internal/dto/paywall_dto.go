// DTOs for paywall checks and quota denials
package dto

import "time"

type FeatureCheckRequest struct {
	FeatureKey string `json:"feature_key" validate:"required,oneof=cv_generations cover_letters ats_scores"`
}

type PaywallInfoResponse struct {
	FeatureKey  string    `json:"feature_key"`
	Tier        string    `json:"tier"`
	Limit       int       `json:"limit"`
	Used        int       `json:"used"`
	ResetsAt    time.Time `json:"resets_at"`
	Message     string    `json:"message"`
	UpgradeTier string    `json:"upgrade_tier,omitempty"`
}

type AccessDecisionResponse struct {
	Allowed     bool                 `json:"allowed"`
	FeatureKey  string               `json:"feature_key"`
	Tier        string               `json:"tier"`
	Role        string               `json:"role,omitempty"`
	Unlimited   bool                 `json:"unlimited"`
	Limit       int                  `json:"limit"` // -1 = unlimited
	Used        int                  `json:"used"`
	Remaining   *int                 `json:"remaining"`
	ResetsAt    *time.Time           `json:"resets_at,omitempty"`
	ModelClass  string               `json:"model_class"`
	PaywallInfo *PaywallInfoResponse `json:"paywall_info,omitempty"`
}

type QuotaExceededData struct {
	Allowed     bool                `json:"allowed"`
	PaywallInfo PaywallInfoResponse `json:"paywall_info"`
}

// QuotaExceededResponse is the full 402 response structure
type QuotaExceededResponse struct {
	Success   bool              `json:"success"`
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	ErrorType string            `json:"error_type"`
	Data      QuotaExceededData `json:"data"`
}
