package paywall

import (
	"errors"
	"fmt"

	"ai-jobassist-be/internal/entity"
)

var ErrNoUser = errors.New("paywall: no user id")

// ConfigurationError means the catalog cannot answer for this feature or tier.
// It is a deployment defect, never something the user can act on.
type ConfigurationError struct {
	Feature entity.FeatureKey
	Tier    entity.Tier
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("paywall configuration: %s (feature=%s tier=%s)", e.Reason, e.Feature, e.Tier)
}

// QuotaExceededError carries the denial so the HTTP layer can render the paywall.
type QuotaExceededError struct {
	Decision *entity.AccessDecision
}

func (e *QuotaExceededError) Error() string {
	if e.Decision == nil {
		return "quota exceeded"
	}
	return fmt.Sprintf("quota exceeded for %s (%d/%d)", e.Decision.FeatureKey, e.Decision.Used, e.Decision.Limit)
}

// Denied converts a negative decision into an error; nil when allowed.
func Denied(decision *entity.AccessDecision) error {
	if decision == nil || decision.Allowed {
		return nil
	}
	return &QuotaExceededError{Decision: decision}
}
