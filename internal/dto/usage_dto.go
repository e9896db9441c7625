// DTOs for usage status and the plan catalog
package dto

import (
	"time"

	"github.com/google/uuid"
)

type FeatureUsageResponse struct {
	FeatureKey string `json:"feature_key"`
	Used       int    `json:"used"`
	Limit      int    `json:"limit"` // -1 = unlimited
	Unlimited  bool   `json:"unlimited"`
	Remaining  *int   `json:"remaining"`
	CanUse     bool   `json:"can_use"`
}

// UsageStatusResponse is returned by GET /api/user/usage-status
type UsageStatusResponse struct {
	UserId           uuid.UUID              `json:"user_id"`
	Tier             string                 `json:"tier"`
	Role             string                 `json:"role,omitempty"`
	PlanId           string                 `json:"plan_id,omitempty"`
	PeriodStart      time.Time              `json:"period_start"`
	PeriodEnd        time.Time              `json:"period_end"`
	Features         []FeatureUsageResponse `json:"features"`
	UpgradeAvailable bool                   `json:"upgrade_available"`
}

type PlanLimitResponse struct {
	Limit     int  `json:"limit"`
	Unlimited bool `json:"unlimited"`
}

// PlanResponse is returned by GET /api/plans (public)
type PlanResponse struct {
	Id           string                       `json:"id"`
	Name         string                       `json:"name"`
	Tier         string                       `json:"tier"`
	Price        float64                      `json:"price"`
	Currency     string                       `json:"currency"`
	BillingCycle string                       `json:"billing_cycle"`
	ModelClass   string                       `json:"model_class"`
	Purchasable  bool                         `json:"purchasable"`
	Limits       map[string]PlanLimitResponse `json:"limits"`
}
