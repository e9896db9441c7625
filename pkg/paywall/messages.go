package paywall

import (
	"fmt"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/pkg/plans"
)

const genericUpgradeMessage = "Upgrade your plan to keep using this feature."

var featureLabels = map[entity.FeatureKey]string{
	entity.FeatureCVGenerations: "CV improvement suggestions",
	entity.FeatureCoverLetters:  "cover letters",
	entity.FeatureATSScores:     "ATS scores",
}

var tierNames = map[entity.Tier]string{
	entity.TierFree:    "Free",
	entity.TierPro:     "Pro",
	entity.TierPremium: "Premium",
}

// UpgradeMessage is the user-facing text shown on denial. It depends only on its
// inputs and the static catalog.
func UpgradeMessage(catalog *plans.Catalog, feature entity.FeatureKey, tier entity.Tier, role entity.Role) string {
	label, knownFeature := featureLabels[feature]
	tierName, knownTier := tierNames[tier]
	if !knownFeature || !knownTier || role.Exempt() || catalog == nil {
		return genericUpgradeMessage
	}

	head := fmt.Sprintf("You've used all of your %s plan %s for this billing period.", tierName, label)

	next := catalog.NextTier(tier)
	if next == "" {
		return head + " Your allowance resets at the start of the next period."
	}
	nextQuota, ok := catalog.Quota(next, feature)
	if !ok {
		return head + " " + genericUpgradeMessage
	}
	if nextQuota.Unlimited {
		return fmt.Sprintf("%s Upgrade to %s for unlimited %s.", head, tierNames[next], label)
	}
	return fmt.Sprintf("%s Upgrade to %s for %d %s per month.", head, tierNames[next], nextQuota.Limit, label)
}

// ModelClassFor picks the LLM class: exempt roles get the capable model.
func ModelClassFor(catalog *plans.Catalog, tier entity.Tier, role entity.Role) entity.ModelClass {
	if role.Exempt() {
		return entity.ModelClassCapable
	}
	if catalog == nil {
		return entity.ModelClassCheap
	}
	return catalog.ModelClass(tier)
}
