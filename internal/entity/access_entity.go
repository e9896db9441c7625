package entity

import "time"

type AccessDecision struct {
	Allowed    bool
	FeatureKey FeatureKey
	Tier       Tier
	Role       Role
	Unlimited  bool
	Limit      int
	Used       int
	// Remaining is nil when the quota is unlimited or the role is exempt.
	Remaining   *int
	ResetsAt    time.Time
	ModelClass  ModelClass
	PaywallInfo *PaywallInfo
}

type PaywallInfo struct {
	FeatureKey  FeatureKey
	Tier        Tier
	Limit       int
	Used        int
	ResetsAt    time.Time
	Message     string
	UpgradeTier Tier
}

type FeatureUsage struct {
	FeatureKey FeatureKey
	Used       int
	Limit      int
	Unlimited  bool
}
